package logginglevel

import "go.uber.org/zap"

//nolint:gochecknoglobals // shared between the logger construction and the --debug flag
var Level = zap.NewAtomicLevelAt(zap.InfoLevel)
