package logger

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

// New builds a zap logger for the given environment. Anything other than
// "prod" gets the development config.
func New(env string) (*zap.Logger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if env == EnvProd {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, errors.Wrap(err, "logger init")
	}
	return l.With(zap.String("service", "expensely"), zap.String("env", env)), nil
}
