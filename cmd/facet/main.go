// Command facet runs the diamond price analysis end to end: load the
// dataset, bake the feature recipe, cross-validate four regression
// models, tune two of them by grid search, then refit the winner and
// evaluate it on the held-out test partition.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/facetlab/facet/core/model"
	"github.com/facetlab/facet/dataset"
	"github.com/facetlab/facet/ensemble"
	"github.com/facetlab/facet/linear"
	"github.com/facetlab/facet/metrics"
	"github.com/facetlab/facet/neural"
	"github.com/facetlab/facet/pkg/errors"
	"github.com/facetlab/facet/pkg/log"
	"github.com/facetlab/facet/recipe"
	"github.com/facetlab/facet/report"
	"github.com/facetlab/facet/tuning"
)

func main() {
	dataPath := flag.String("data", "", "path to a diamonds CSV; empty uses the bundled sample")
	testFraction := flag.Float64("test-fraction", 0.2, "fraction of rows held out for final evaluation")
	folds := flag.Int("folds", 5, "number of cross-validation folds")
	seed := flag.Int64("seed", 42, "seed for the split, resampling and model randomness")
	nzvThreshold := flag.Float64("nzv-threshold", 1e-4, "variance below which a feature column is dropped")
	corrThreshold := flag.Float64("corr-threshold", 0.9, "absolute correlation above which a column is dropped")
	outDir := flag.String("out", ".", "directory for the predicted-vs-actual plot")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	if _, err := log.ParseLevel(*logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "facet: invalid -log-level %q: must be one of debug, info, warn, error\n", *logLevel)
		flag.Usage()
		os.Exit(2)
	}
	log.SetupLogger(*logLevel)
	logger := log.GetLoggerWithName("facet")

	// Solver warnings (e.g. non-convergence) go to the log instead of
	// failing the run.
	errors.SetWarningHandler(func(w error) {
		logger.Warn("model warning", "warning", w.Error())
	})

	if err := run(*dataPath, *testFraction, *folds, *seed, *nzvThreshold, *corrThreshold, *outDir, logger); err != nil {
		logger.Error("analysis failed", log.ErrAttrKey, err)
		os.Exit(1)
	}
}

func run(dataPath string, testFraction float64, folds int, seed int64,
	nzvThreshold, corrThreshold float64, outDir string, logger log.Logger) error {

	// Load and derive the log-price target.
	var (
		raw *dataset.Table
		err error
	)
	if dataPath == "" {
		raw, err = dataset.LoadDiamonds()
	} else {
		raw, err = dataset.LoadDiamondsFile(dataPath)
	}
	if err != nil {
		return err
	}
	data, err := dataset.WithLogPrice(raw)
	if err != nil {
		return err
	}
	logger.Info("dataset loaded",
		log.SamplesKey, data.NumRows(),
		log.FeaturesKey, data.NumCols()-1,
	)

	// Hold out the test partition before anything is learned.
	split, err := dataset.TrainTestSplit(data, testFraction, seed)
	if err != nil {
		return err
	}

	// Feature recipe, fit on the training partition only.
	rec := recipe.New(dataset.ColLogPrice,
		recipe.NewOneHot(dataset.ColCut, dataset.ColColor, dataset.ColClarity),
		recipe.NewNearZeroVariance(nzvThreshold),
		recipe.NewCorrFilter(corrThreshold),
		recipe.NewScale(),
	)
	if err := rec.Fit(split.Train); err != nil {
		return err
	}

	bakedTrain, err := rec.Bake(split.Train)
	if err != nil {
		return err
	}
	bakedTest, err := rec.Bake(split.Test)
	if err != nil {
		return err
	}

	trainX, trainY, features, err := bakedTrain.Design(dataset.ColLogPrice)
	if err != nil {
		return err
	}
	testX, testY, _, err := bakedTest.Design(dataset.ColLogPrice)
	if err != nil {
		return err
	}
	logger.Info("recipe baked",
		log.FeaturesKey, len(features),
		"train_rows", split.Train.NumRows(),
		"test_rows", split.Test.NumRows(),
	)

	kf := tuning.NewKFold(folds, true, seed)

	comparison := &report.Comparison{}

	// Ordinary least squares, no hyperparameters to tune.
	olsCV, err := tuning.CrossValidate(func() model.Regressor {
		return linear.NewRegression()
	}, trainX, trainY, kf)
	if err != nil {
		return err
	}
	comparison.Add(cvRow("linear_regression", olsCV, false))

	// Elastic net, tuned over penalty strength and L1/L2 mixture.
	enSearch := tuning.NewGridSearch(func(params map[string]float64) model.Regressor {
		return linear.NewElasticNet(
			linear.WithAlpha(params["alpha"]),
			linear.WithL1Ratio(params["l1_ratio"]),
		)
	}, tuning.ParamGrid{
		"alpha":    {0.0001, 0.001, 0.01, 0.1},
		"l1_ratio": {0.1, 0.5, 0.9},
	}, kf)
	if err := enSearch.Fit(trainX, trainY); err != nil {
		return err
	}
	comparison.Add(cvRow("elastic_net", enSearch.BestCV, true))

	// Random forest, tuned over ensemble size and split width.
	maxFeatureChoices := forestFeatureChoices(len(features))
	rfSearch := tuning.NewGridSearch(func(params map[string]float64) model.Regressor {
		return ensemble.NewRandomForest(
			ensemble.WithNumTrees(int(params["num_trees"])),
			ensemble.WithMaxFeatures(int(params["max_features"])),
			ensemble.WithMinLeaf(3),
			ensemble.WithSeed(seed),
		)
	}, tuning.ParamGrid{
		"num_trees":    {100, 200},
		"max_features": maxFeatureChoices,
	}, kf)
	if err := rfSearch.Fit(trainX, trainY); err != nil {
		return err
	}
	comparison.Add(cvRow("random_forest", rfSearch.BestCV, true))

	// Neural network with fixed hyperparameters.
	mlpFactory := func() model.Regressor {
		return neural.NewMLP(
			neural.WithHiddenUnits(16),
			neural.WithLearningRate(0.01),
			neural.WithWeightDecay(1e-4),
			neural.WithMaxEpochs(400),
			neural.WithSeed(seed),
		)
	}
	mlpCV, err := tuning.CrossValidate(mlpFactory, trainX, trainY, kf)
	if err != nil {
		return err
	}
	comparison.Add(cvRow("mlp", mlpCV, false))

	fmt.Println("Cross-validation results (log10 price):")
	fmt.Print(comparison.Render())

	best, err := comparison.Best()
	if err != nil {
		return err
	}
	logger.Info("winner selected", log.ModelNameKey, best.Model, log.RMSEKey, best.RMSE)

	// Refit the winner on the full training partition. The grid
	// searches already hold a refit best model.
	var winner model.Regressor
	switch best.Model {
	case "linear_regression":
		winner = linear.NewRegression()
		if err := winner.Fit(trainX, trainY); err != nil {
			return err
		}
	case "elastic_net":
		winner = enSearch.BestModel
	case "random_forest":
		winner = rfSearch.BestModel
	case "mlp":
		winner = mlpFactory()
		if err := winner.Fit(trainX, trainY); err != nil {
			return err
		}
	}

	if pg, ok := winner.(model.ParameterGetter); ok {
		logger.Info("winner hyperparameters", "params", pg.GetParams())
	}

	// Held-out evaluation.
	pred, err := winner.Predict(testX)
	if err != nil {
		return err
	}
	predVec, err := metrics.ColumnVec(pred)
	if err != nil {
		return err
	}
	testR2, err := metrics.R2Score(testY, predVec)
	if err != nil {
		return err
	}
	testMAE, err := metrics.MAE(testY, predVec)
	if err != nil {
		return err
	}
	testRMSE, err := metrics.RMSE(testY, predVec)
	if err != nil {
		return err
	}

	fmt.Printf("\nHeld-out evaluation of %s:\n", best.Model)
	fmt.Printf("  R2:   %.4f\n", testR2)
	fmt.Printf("  MAE:  %.4f\n", testMAE)
	fmt.Printf("  RMSE: %.4f\n", testRMSE)

	plotPath := filepath.Join(outDir, "predicted_vs_actual.png")
	title := fmt.Sprintf("%s on held-out data", best.Model)
	if err := report.PredictedActualPlot(testY, predVec, title, plotPath); err != nil {
		return err
	}
	logger.Info("plot written", "path", plotPath)

	return nil
}

// cvRow converts a cross-validation result into a comparison row.
func cvRow(name string, cv *tuning.CVResult, tuned bool) report.Row {
	return report.Row{
		Model:   name,
		R2:      cv.MeanR2(),
		MAE:     cv.MeanMAE(),
		RMSE:    cv.MeanRMSE(),
		StdRMSE: cv.StdRMSE(),
		Tuned:   tuned,
	}
}

// forestFeatureChoices picks sensible max_features grid values for the
// baked feature count: roughly sqrt(p), p/3 and p/2, deduplicated.
func forestFeatureChoices(p int) []float64 {
	add := func(vals []float64, v int) []float64 {
		if v < 1 {
			v = 1
		}
		if v > p {
			v = p
		}
		for _, existing := range vals {
			if int(existing) == v {
				return vals
			}
		}
		return append(vals, float64(v))
	}

	var choices []float64
	choices = add(choices, intSqrt(p))
	choices = add(choices, p/3)
	choices = add(choices, p/2)
	return choices
}

func intSqrt(p int) int {
	v := 1
	for (v+1)*(v+1) <= p {
		v++
	}
	return v
}
