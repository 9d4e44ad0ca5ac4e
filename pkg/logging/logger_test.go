package logging

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/mynaparrot/meethub-server/pkg/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Level(t *testing.T) {
	lvl := "WARN"
	logger, err := NewLogger(&config.LogSettings{LogLevel: &lvl}, true)
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())

	logger, err = NewLogger(&config.LogSettings{}, true)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
}

func TestNewLogger_File(t *testing.T) {
	file := filepath.Join(t.TempDir(), "meethub.log")
	logger, err := NewLogger(&config.LogSettings{LogFile: file, MaxSize: 1}, false)
	require.NoError(t, err)
	logger.Info("hello")
	assert.FileExists(t, file)
}

func TestSourceFormatter(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetReportCaller(true)
	logger.SetFormatter(&SourceFormatter{Underlying: &logrus.TextFormatter{DisableColors: true}})

	logger.Info("with source")
	assert.Contains(t, buf.String(), "x_file_source=\"logger_test.go:")
}

func TestSourceFormatter_AddSpace(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&SourceFormatter{Underlying: &logrus.TextFormatter{DisableColors: true}, AddSpace: true})

	logger.Info("spaced")
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n\n")))
	assert.NotContains(t, buf.String(), "x_file_source")
}
