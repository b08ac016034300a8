package pixelproc

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cherenkov-tools/pixelproc/pkg/cleaning"
	"github.com/cherenkov-tools/pixelproc/pkg/trace"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o644))
	return filename
}

func TestDefaultConfigurationIsValid(t *testing.T) {
	t.Parallel()
	config := DefaultConfiguration()
	require.NoError(t, config.Validate())

	assert.Equal(t, trace.MethodSlidingWindow, config.ExtractionMethod.Code)
	assert.Equal(t, cleaning.MethodTwoLevel, config.CleaningMethod.Code)
	assert.Equal(t, "none", config.PoleZero.String())
	assert.Equal(t, cleaning.DefaultParams(), config.CleaningParams())
	assert.Equal(t, trace.MethodSlidingWindow, config.ExtractionSettings().Method)
}

func TestLoadConfiguration(t *testing.T) {
	t.Parallel()
	filename := writeConfig(t, `{
		"extraction_method": "pulse_fit",
		"cleaning_method": "time_cluster",
		"pole_zero": "long",
		"fit_function": "ev",
		"sum_window": 5,
		"no_db": true
	}`)

	config, err := LoadConfiguration(filename)
	require.NoError(t, err)
	assert.Equal(t, trace.MethodPulseFit, config.ExtractionMethod.Code)
	assert.Equal(t, cleaning.MethodTimeCluster, config.CleaningMethod.Code)
	assert.Equal(t, trace.PoleZeroLong, config.PoleZero.Code)
	assert.Equal(t, trace.FitEV, config.FitFunction.Code)
	assert.Equal(t, 5, config.SumWindow)
	assert.True(t, config.NoDB)
	// untouched keys keep their defaults
	assert.Equal(t, 2, config.SumFirst)
	assert.Equal(t, []float64{0.2, 0.5, 0.8, 1.0}, config.TimingLevels)
	assert.NoError(t, config.Validate())
}

func TestLoadConfigurationErrors(t *testing.T) {
	t.Parallel()

	_, err := LoadConfiguration(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadConfiguration(writeConfig(t, `{"extraction_method": "median"}`))
	assert.ErrorContains(t, err, "invalid ExtractionMethod: median")

	_, err = LoadConfiguration(writeConfig(t, `{"cleaning_method": "three_level"}`))
	assert.ErrorContains(t, err, "invalid CleaningMethod: three_level")

	_, err = LoadConfiguration(writeConfig(t, `{"pole_zero": "medium"}`))
	assert.ErrorContains(t, err, "invalid PoleZero: medium")
}

func TestValidate(t *testing.T) {
	t.Parallel()
	config := DefaultConfiguration()
	config.NumWorkers = 0
	config.SumFirst = 16
	config.DBDriver = "postgres"
	config.TimingLevels = []float64{0.5, 0.2, 1.0}

	err := config.Validate()
	require.Error(t, err)

	var invalid *ErrInvalidConfiguration
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "num_workers", invalid.Field)
	assert.ErrorIs(t, err, trace.ErrInvalidLevels)
	for _, field := range []string{"num_workers", "sum_first", "db_driver", "timing_levels"} {
		assert.ErrorContains(t, err, field)
	}

	config = DefaultConfiguration()
	config.NoDB = true
	config.DBDriver = ""
	assert.NoError(t, config.Validate())
}

func TestMethodWrappersJSON(t *testing.T) {
	t.Parallel()
	config := DefaultConfiguration()
	config.PoleZero = poleZeroFromCode(0.9)

	data, err := json.Marshal(config)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"extraction_method":"sliding_window"`)
	assert.Contains(t, string(data), `"cleaning_method":"two_level"`)
	assert.Contains(t, string(data), `"fit_function":"grisu"`)
	assert.Contains(t, string(data), `"pole_zero":0.9`)

	var decoded Configuration
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, config.ExtractionMethod.Code, decoded.ExtractionMethod.Code)
	assert.Equal(t, config.CleaningMethod.Code, decoded.CleaningMethod.Code)
	assert.Equal(t, trace.PoleZero(0.9), decoded.PoleZero.Code)

	assert.Equal(t, "UNKNOWN", ExtractionMethod{}.String())
	assert.Equal(t, "UNKNOWN", CleaningMethod{Code: 9}.String())
	assert.Equal(t, "UNKNOWN", FitFunction{}.String())
	assert.Equal(t, "UNKNOWN", PoleZero{Code: 0.3}.String())
}

func TestCleaningParamsFallbackClusterCut(t *testing.T) {
	t.Parallel()
	config := DefaultConfiguration()
	assert.Zero(t, config.FallbackTimeCutCluster)
	assert.Equal(t, 16., config.CleaningParams().FallbackTimeCutCluster)

	config.NSamples = 32
	assert.Equal(t, 32., config.CleaningParams().FallbackTimeCutCluster)

	config.FallbackTimeCutCluster = 4
	assert.Equal(t, 4., config.CleaningParams().FallbackTimeCutCluster)

	// negative keeps time_cut_cluster
	config.FallbackTimeCutCluster = -1
	assert.Zero(t, config.CleaningParams().FallbackTimeCutCluster)
	require.NoError(t, config.Validate())
}

func TestDefaultCleaningKeepsDelayedCluster(t *testing.T) {
	t.Parallel()
	config := DefaultConfiguration()
	config.CleaningMethod = CleaningMethod{Name: "time_cluster", Code: cleaning.MethodTimeCluster}

	// two separate rows of three pixels, the second 3 samples later
	neighbours := [][]int{{1}, {0, 2}, {1}, {4}, {3, 5}, {4}}
	x := []float64{0, 0.15, 0.3, 1.0, 1.15, 1.3}
	graph, err := cleaning.NewNeighbourGraph(neighbours, x, make([]float64, 6), 6)
	require.NoError(t, err)
	cleaner, err := cleaning.NewCleaner(graph, config.CleaningParams())
	require.NoError(t, err)

	pixels := make([]cleaning.Pixel, 6)
	for i := range pixels {
		pixels[i] = cleaning.Pixel{PedVar: 1., Charge: 50., Time: 10.}
		if i >= 3 {
			pixels[i].Charge = 40.
			pixels[i].Time = 13.
		}
	}
	summary, err := cleaner.Clean(pixels, cleaning.TimeGradient{})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.NClustersCleaned)
	for i := range pixels {
		assert.True(t, pixels[i].Image, "channel %d", i)
	}
}
