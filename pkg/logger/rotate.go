package logger

import (
	"net/url"
	"path/filepath"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/natefinch/lumberjack.v2"
)

const rotateScheme = "rotate"

// Rotation controls the lumberjack file sink.
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type rotateSink struct {
	*lumberjack.Logger
}

func (rotateSink) Sync() error { return nil }

var registerOnce sync.Once

// rotatePath registers the rotate sink once and returns the zap output URL for file.
func rotatePath(file string, r Rotation) (string, error) {
	var regErr error
	registerOnce.Do(func() {
		regErr = zap.RegisterSink(rotateScheme, newRotateSink)
	})
	if regErr != nil {
		return "", regErr
	}

	abs, err := filepath.Abs(file)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("max_size", strconv.Itoa(r.MaxSizeMB))
	q.Set("max_backups", strconv.Itoa(r.MaxBackups))
	q.Set("max_age", strconv.Itoa(r.MaxAgeDays))
	q.Set("compress", strconv.FormatBool(r.Compress))

	u := url.URL{Scheme: rotateScheme, Path: filepath.ToSlash(abs), RawQuery: q.Encode()}
	return u.String(), nil
}

func newRotateSink(u *url.URL) (zap.Sink, error) {
	q := u.Query()
	atoi := func(key string) int {
		n, _ := strconv.Atoi(q.Get(key))
		return n
	}
	compress, _ := strconv.ParseBool(q.Get("compress"))

	return rotateSink{&lumberjack.Logger{
		Filename:   filepath.FromSlash(u.Path),
		MaxSize:    atoi("max_size"),
		MaxBackups: atoi("max_backups"),
		MaxAge:     atoi("max_age"),
		Compress:   compress,
	}}, nil
}
