package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"

	"github.com/lbs-irtree/irtree/aggregate"
	"github.com/lbs-irtree/irtree/geometry"
	"github.com/lbs-irtree/irtree/internal/config"
	"github.com/lbs-irtree/irtree/internal/logging"
	"github.com/lbs-irtree/irtree/internal/metrics"
	"github.com/lbs-irtree/irtree/internal/storage"
	"github.com/lbs-irtree/irtree/invertedfile"
	"github.com/lbs-irtree/irtree/irtree"
	"github.com/lbs-irtree/irtree/rtree"
	"github.com/lbs-irtree/irtree/search"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file; defaults are used when omitted")
	numPoints := flag.Int("points", 2000, "number of synthetic points to insert")
	flag.Parse()

	cfg := config.Config{}
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			panic(err)
		}
	} else {
		cfg.ApplyDefaults()
	}

	logger, err := logging.New(cfg.Logging.Env, cfg.Logging.Level)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	if cfg.Metrics.Enabled {
		metrics.Register()
	}

	variant, err := rtree.ParseVariant(cfg.Index.TreeVariant)
	if err != nil {
		sugar.Fatalw("invalid tree variant", "err", err)
	}

	treeCfg := rtree.Config{
		TreeVariant:              variant,
		FillFactor:               cfg.Index.FillFactor,
		IndexCapacity:            cfg.Index.IndexCapacity,
		LeafCapacity:             cfg.Index.LeafCapacity,
		NearMinimumOverlapFactor: cfg.Index.NearMinimumOverlapFactor,
		SplitDistributionFactor:  cfg.Index.SplitDistributionFactor,
		ReinsertFactor:           cfg.Index.ReinsertFactor,
		Dimension:                cfg.Index.Dimension,
	}

	store, closeStore := newStore(cfg, sugar)
	defer closeStore()

	tr, err := rtree.New(treeCfg, store, sugar)
	if err != nil {
		sugar.Fatalw("build tree", "err", err)
	}
	defer tr.Close()

	faker := gofakeit.New(0)
	docs := irtree.NewMemDocumentStore()
	keywords := []int64{1, 2, 3, 4, 5}

	start := time.Now()
	for i := 0; i < *numPoints; i++ {
		lat, _ := faker.LatitudeInRange(-7.818711242232534, -7.767187043571421)
		lon, _ := faker.LongitudeInRange(110.32382482774563, 110.42872530361015)
		id := int64(i)
		if err := tr.InsertData(geometry.Point{lat, lon}.ToRegion(1e-9), id, nil); err != nil {
			sugar.Fatalw("insert", "err", err)
		}
		docs.Put(id, []invertedfile.Posting{{Keyword: keywords[i%len(keywords)], Weight: 1.0}})
		if (i+1)%1000 == 0 {
			sugar.Infow("inserted", "count", i+1, "elapsed", time.Since(start))
		}
	}

	ivf := invertedfile.NewMemInvertedFile()
	if err := irtree.Build(tr, docs, ivf); err != nil {
		sugar.Fatalw("build inverted file", "err", err)
	}

	if cfg.Metrics.Enabled {
		stats := tr.Stats()
		metrics.Observe(variant.String(), stats.NodesTotal, stats.DataCount, stats.TreeHeight, stats.Reads, stats.Writes)
	}

	q := search.Query{Location: geometry.Point{-7.79, 110.37}, Keywords: []int64{2}}
	params := search.Params{Alpha: cfg.Search.Alpha, MaxD: cfg.Search.MaxD}
	results, err := search.TopK(tr, ivf, q, cfg.Search.DefaultTopK, params)
	if err != nil {
		sugar.Fatalw("top-k search", "err", err)
	}

	aq := aggregate.New([]aggregate.Query{
		{Location: geometry.Point{-7.80, 110.35}, Keywords: []int64{1, 2}, Weight: 1},
		{Location: geometry.Point{-7.79, 110.40}, Keywords: []int64{2, 3}, Weight: 1},
	}, aggregate.Mean)
	aggResults, err := aggregate.Run(tr, ivf, aq, cfg.Search.DefaultTopK, params)
	if err != nil {
		sugar.Fatalw("aggregate search", "err", err)
	}

	fmt.Printf("inserted %d points in %v\n", *numPoints, time.Since(start))
	fmt.Printf("top-k search returned %d results\n", len(results))
	fmt.Printf("aggregate search returned %d results\n", len(aggResults))
}

func newStore(cfg config.Config, sugar *zap.SugaredLogger) (storage.PageStore, func()) {
	if cfg.Storage.Backend == "disk" {
		ds, err := storage.NewDiskStore(cfg.Storage.DataDir, cfg.Storage.PageSize, cfg.Storage.BufferPoolSize, sugar)
		if err != nil {
			sugar.Fatalw("open disk store", "err", err)
		}
		return ds, func() { ds.Close() }
	}
	return storage.NewMemStore(), func() {}
}
