// Package main provides the minnet CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/cpuid/v2"

	"github.com/born-ml/minnet/internal/config"
	"github.com/born-ml/minnet/internal/dataset"
	"github.com/born-ml/minnet/internal/nn"
)

const version = "v0.3.0"

func main() {
	log.SetFlags(log.LstdFlags)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "train":
		train(os.Args[2:])
	case "query":
		query(os.Args[2:])
	case "info":
		info()
	case "version":
		fmt.Printf("minnet %s\n", version)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("minnet - small feed-forward network trainer")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  train      Train a network from a YAML run file")
	fmt.Println("  query      Run a saved model on one input")
	fmt.Println("  info       Show host CPU details")
	fmt.Println("  version    Show version")
}

func train(args []string) {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	cfgPath := fs.String("config", "run.yaml", "YAML run file")
	dataPath := fs.String("data", "", "CSV data file (overrides data.path)")
	epochs := fs.Int("epochs", 0, "Maximum epochs (overrides training.epochs)")
	patience := fs.Int("patience", 0, "Early-stopping patience (overrides training.patience)")
	lr := fs.Float64("lr", 0, "Learning rate (overrides model.learning_rate)")
	batchSize := fs.Int("batch-size", 0, "Mini-batch size (overrides model.batch_size)")
	seed := fs.Int64("seed", 0, "Random seed (overrides training.seed)")
	out := fs.String("out", "", "Model output path (overrides training.output)")
	_ = fs.Parse(args)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg.ApplyOverrides(config.Overrides{
		DataPath:     *dataPath,
		Epochs:       *epochs,
		Patience:     *patience,
		LearningRate: *lr,
		BatchSize:    *batchSize,
		Seed:         *seed,
		Output:       *out,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	data, err := dataset.LoadCSV(cfg.Data.Path, cfg.Data.Targets, cfg.Data.Header)
	if err != nil {
		log.Fatalf("load data: %v", err)
	}
	if cfg.Data.Shuffle {
		s := cfg.Training.Seed
		if s == 0 {
			s = time.Now().UnixNano()
		}
		//nolint:gosec // G404: shuffling training data
		data.Shuffle(rand.New(rand.NewSource(s)))
	}
	if cfg.Data.Standardize {
		sc, err := data.Standardize(nn.DefaultEpsilon)
		if err != nil {
			log.Fatalf("standardize: %v", err)
		}
		log.Printf("standardized inputs mean=%v std=%v", sc.Mean, sc.Std)
	}

	trainSet, valSet, err := data.Holdout(cfg.Data.ValidationSplit)
	if err != nil {
		log.Fatalf("split data: %v", err)
	}

	netCfg, err := cfg.NetworkConfig(len(data.Inputs[0]))
	if err != nil {
		log.Fatalf("network config: %v", err)
	}
	netCfg.Logger = log.Default()

	net, err := nn.New(netCfg)
	if err != nil {
		log.Fatalf("build network: %v", err)
	}
	log.Printf("network=%s train=%d val=%d", net, trainSet.Len(), valSet.Len())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	res, err := net.TrainWithEarlyStopping(ctx,
		trainSet.Inputs, trainSet.Targets, valSet.Inputs, valSet.Targets,
		cfg.Training.Epochs, cfg.Training.Patience,
		nn.EarlyStoppingOptions{CheckpointPath: cfg.Training.Checkpoint, Loss: cfg.Training.Loss},
	)
	switch {
	case errors.Is(err, context.Canceled):
		log.Printf("training interrupted: %v", err)
	case err != nil:
		log.Fatalf("train: %v", err)
	}

	if err := net.Save(cfg.Training.Output); err != nil {
		log.Fatalf("save: %v", err)
	}
	log.Printf("done epochs=%d best_epoch=%d best_loss=%.6f reason=%s elapsed=%s model=%s",
		res.Epochs, res.BestEpoch, res.BestLoss, res.Reason, time.Since(start).Round(time.Millisecond), cfg.Training.Output)
}

func query(args []string) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	modelPath := fs.String("model", "model.json", "Saved model")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		log.Fatalf("usage: minnet query -model model.json x0,x1,...")
	}
	input, err := parseVector(fs.Arg(0))
	if err != nil {
		log.Fatalf("parse input: %v", err)
	}

	net, err := nn.Load(*modelPath)
	if err != nil {
		log.Fatalf("load model: %v", err)
	}
	out, err := net.Query(input)
	if err != nil {
		log.Fatalf("query: %v", err)
	}

	parts := make([]string, len(out))
	for i, v := range out {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	fmt.Println(strings.Join(parts, ","))
}

func parseVector(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	v := make([]float64, len(fields))
	for i, f := range fields {
		x, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		v[i] = x
	}
	return v, nil
}

func info() {
	fmt.Printf("minnet %s (%s, %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	fmt.Printf("CPU:      %s\n", cpuid.CPU.BrandName)
	fmt.Printf("Vendor:   %s\n", cpuid.CPU.VendorString)
	fmt.Printf("Cores:    %d physical, %d logical\n", cpuid.CPU.PhysicalCores, cpuid.CPU.LogicalCores)
	fmt.Printf("AVX2:     %v\n", cpuid.CPU.Supports(cpuid.AVX2))
	fmt.Printf("FMA3:     %v\n", cpuid.CPU.Supports(cpuid.FMA3))
	fmt.Printf("Workers:  %d backward workers per batch\n", nn.Workers)
}
