package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"quantiledb/config"
	"quantiledb/core"
	"quantiledb/percentile"
	"quantiledb/qlog"
	"quantiledb/stats"
	"quantiledb/store"
)

var (
	configPath  = flag.String("config", "", "Path to YAML config file")
	inputPath   = flag.String("input", "-", "File with one value per line; '-' reads stdin")
	inputExpr   = flag.String("input-expr", "$value", "Input expression descriptor recorded in the definition")
	psFlag      = flag.String("p", "0.5", "Comma-separated quantiles from [0.0, 1.0]")
	methodFlag  = flag.String("method", "approximate", "approximate | discrete | continuous")
	medianFlag  = flag.Bool("median", false, "Compute the median instead of percentiles")
	workers     = flag.Int("workers", 1, "Leaf accumulators to scatter the input across")
	exchangeDir = flag.String("exchange-dir", "", "Badger directory for the partial-state exchange; empty keeps it in memory")
)

// All partials of one CLI run land under the same group.
const groupID = 0

type report struct {
	Definition core.Definition `json:"definition"`
	Result     interface{}     `json:"result"`
	Count      uint64          `json:"count"`
	Mean       float64         `json:"mean"`
	SD         float64         `json:"sd"`
}

// Leaf-side surface shared by the percentile and median accumulators.
type leafAccumulator interface {
	Incorporate(core.Value) error
	FinalizePartial() ([]byte, error)
}

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			qlog.Zero.Fatal().Err(err).Str("path", *configPath).Msg("failed to load config")
		}
		cfg = loaded
	}
	qlog.UpdateZeroLogLevel(cfg.LogLevel)
	core.SetDefaultMaxMemoryBytes(cfg.MaxAccumulatorBytes)

	if err := percentile.ValidateMethodName(*methodFlag, cfg.AccurateMethodsEnabled); err != nil {
		qlog.Zero.Fatal().Err(err).Msg("rejected method")
	}
	method, err := percentile.ParseMethod(*methodFlag)
	if err != nil {
		qlog.Zero.Fatal().Err(err).Msg("rejected method")
	}

	ps := []float64{0.5}
	if !*medianFlag {
		ps, err = parsePs(*psFlag)
		if err != nil {
			qlog.Zero.Fatal().Err(err).Str("p", *psFlag).Msg("rejected quantile list")
		}
	}
	request, err := core.NewQuantileRequest(*inputExpr, ps, method)
	if err != nil {
		qlog.Zero.Fatal().Err(err).Msg("rejected request")
	}

	values, err := readValues(*inputPath)
	if err != nil {
		qlog.Zero.Fatal().Err(err).Str("path", *inputPath).Msg("failed to read input")
	}
	qlog.Zero.Info().
		Int("values", len(values)).
		Str("method", method.String()).
		Int("workers", *workers).
		Msg("accumulating")

	welford := stats.NewWelford()
	var result interface{}
	var def core.Definition
	if *workers <= 1 {
		result, def, err = runSingle(request, values, welford)
	} else {
		result, def, err = runScattered(request, values, *workers, welford)
	}
	if err != nil {
		qlog.Zero.Fatal().Err(err).Msg("aggregation failed")
	}

	out, err := json.Marshal(report{
		Definition: def,
		Result:     result,
		Count:      welford.Count(),
		Mean:       welford.Mean(),
		SD:         welford.SD(),
	})
	if err != nil {
		qlog.Zero.Fatal().Err(err).Msg("failed to encode report")
	}
	fmt.Println(string(out))
}

func runSingle(request core.QuantileRequest, values []core.Value, welford *stats.Welford) (interface{}, core.Definition, error) {
	if *medianFlag {
		acc, err := core.NewMedianAccumulator(request.Input, request.Method, core.ModeLeaf)
		if err != nil {
			return nil, core.Definition{}, err
		}
		if err := incorporateAll(acc, values, welford); err != nil {
			return nil, core.Definition{}, err
		}
		return acc.Finalize(), acc.SerializeDefinition(), nil
	}

	acc, err := core.NewPercentileAccumulator(request, core.ModeLeaf)
	if err != nil {
		return nil, core.Definition{}, err
	}
	if err := incorporateAll(acc, values, welford); err != nil {
		return nil, core.Definition{}, err
	}
	return acc.Finalize(), acc.SerializeDefinition(), nil
}

func runScattered(request core.QuantileRequest, values []core.Value, nWorkers int, welford *stats.Welford) (interface{}, core.Definition, error) {
	backend, err := openExchange(*exchangeDir)
	if err != nil {
		return nil, core.Definition{}, err
	}
	exchange := store.NewCachedStore(backend, true)
	defer func() {
		if err := exchange.Close(); err != nil {
			qlog.Zero.Error().Err(err).Msg("failed to close exchange store")
		}
	}()

	chunks := chunkValues(values, nWorkers)
	welfords := make([]*stats.Welford, len(chunks))

	g := new(errgroup.Group)
	for i := range chunks {
		workerID := i
		chunk := chunks[i]
		g.Go(func() error {
			leaf, err := newLeaf(request)
			if err != nil {
				return err
			}
			w := stats.NewWelford()
			if err := incorporateAll(leaf, chunk, w); err != nil {
				return err
			}
			partial, err := leaf.FinalizePartial()
			if err != nil {
				return err
			}
			welfords[workerID] = w
			qlog.Zero.Debug().
				Int("worker", workerID).
				Int("values", len(chunk)).
				Int("partial_bytes", len(partial)).
				Msg("leaf finished")
			return exchange.Put(groupID, int64(workerID), partial)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, core.Definition{}, err
	}
	for _, w := range welfords {
		welford.Merge(w)
	}

	if *medianFlag {
		merger, err := core.NewMedianAccumulator(request.Input, request.Method, core.ModeMerge)
		if err != nil {
			return nil, core.Definition{}, err
		}
		if err := mergeAll(merger.PercentileAccumulator, exchange); err != nil {
			return nil, core.Definition{}, err
		}
		return merger.Finalize(), merger.SerializeDefinition(), nil
	}

	merger, err := core.NewPercentileAccumulator(request, core.ModeMerge)
	if err != nil {
		return nil, core.Definition{}, err
	}
	if err := mergeAll(merger, exchange); err != nil {
		return nil, core.Definition{}, err
	}
	return merger.Finalize(), merger.SerializeDefinition(), nil
}

func newLeaf(request core.QuantileRequest) (leafAccumulator, error) {
	if *medianFlag {
		return core.NewMedianAccumulator(request.Input, request.Method, core.ModeLeaf)
	}
	return core.NewPercentileAccumulator(request, core.ModeLeaf)
}

func incorporateAll(acc leafAccumulator, values []core.Value, welford *stats.Welford) error {
	for _, v := range values {
		if err := acc.Incorporate(v); err != nil {
			return err
		}
		if v.IsNumeric() && !math.IsNaN(v.Float64()) {
			welford.Update(v.Float64())
		}
	}
	return nil
}

func mergeAll(merger *core.PercentileAccumulator, exchange store.Backend) error {
	return exchange.Scan(groupID, func(workerID int64, partial []byte) error {
		return merger.Merge(partial)
	})
}

func openExchange(dir string) (store.Backend, error) {
	if dir == "" {
		return store.NewInMemoryBackend(), nil
	}
	db, err := store.OpenBadgerDB(dir)
	if err != nil {
		return nil, err
	}
	return store.NewBadgerBackend(db), nil
}

func chunkValues(values []core.Value, nWorkers int) [][]core.Value {
	if nWorkers > len(values) {
		nWorkers = len(values)
	}
	if nWorkers < 1 {
		nWorkers = 1
	}
	chunks := make([][]core.Value, 0, nWorkers)
	chunkSize := (len(values) + nWorkers - 1) / nWorkers
	for start := 0; start < len(values); start += chunkSize {
		end := start + chunkSize
		if end > len(values) {
			end = len(values)
		}
		chunks = append(chunks, values[start:end])
	}
	return chunks
}

func parsePs(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	ps := make([]float64, 0, len(parts))
	for _, part := range parts {
		p, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return ps, nil
}

func readValues(path string) ([]core.Value, error) {
	file := os.Stdin
	if path != "-" {
		var err error
		file, err = os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
	}

	var values []core.Value
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		token := strings.TrimSpace(scanner.Text())
		if token == "" {
			continue
		}
		if num, err := strconv.ParseFloat(token, 64); err == nil {
			values = append(values, core.Numeric(num))
		} else {
			values = append(values, core.Str(token))
		}
	}
	return values, scanner.Err()
}
