package app

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	runtime "github.com/banzaicloud/logrus-runtime-formatter"
	logrusrv2 "github.com/bombsimon/logrusr/v2"
	"github.com/metal-toolbox/xapictl/internal/model"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
)

// App holds attributes for the xapictl application
type App struct {
	// v is the viper instance the configuration is loaded with.
	v *viper.Viper
	// Config is the xapictl configuration.
	Config *Configuration
	// TermCh is the channel to terminate the app based on a signal
	TermCh chan os.Signal
	// Logger is the app logger
	Logger *logrus.Logger
}

// Options are the command line parameters that take precedence over the configuration.
type Options struct {
	// CfgFile is the configuration file path, when empty $HOME/.xapictl.yml is read if present.
	CfgFile string
	// LogLevel is one of info, debug, trace; when empty the configured value applies.
	LogLevel string
	// LogJSON sets the JSON log formatter.
	LogJSON bool
}

// New returns returns a new instance of the xapictl app
func New(opts *Options) (*App, error) {
	app := &App{
		v:      viper.New(),
		Config: &Configuration{},
		Logger: logrus.New(),
		TermCh: make(chan os.Signal, 1),
	}

	if err := app.LoadConfiguration(opts.CfgFile); err != nil {
		return nil, err
	}

	if opts.LogLevel != "" {
		app.Config.LogLevel = opts.LogLevel
	}

	// set log level, format
	switch logLevel(app.Config.LogLevel) {
	case model.LogLevelDebug:
		app.Logger.Level = logrus.DebugLevel
	case model.LogLevelTrace:
		app.Logger.Level = logrus.TraceLevel
	default:
		app.Logger.Level = logrus.InfoLevel
	}

	var child logrus.Formatter = &logrus.TextFormatter{DisableTimestamp: false, FullTimestamp: true}
	if opts.LogJSON {
		child = &logrus.JSONFormatter{}
	}

	app.Logger.SetFormatter(
		&runtime.Formatter{ChildFormatter: child},
	)

	// the otel SDK reports export errors through logr
	otel.SetLogger(logrusrv2.New(app.Logger))

	// register for SIGINT, SIGTERM
	signal.Notify(app.TermCh, syscall.SIGINT, syscall.SIGTERM)

	return app, nil
}

// CancelOnSignal returns a context which is canceled once a SIGINT or SIGTERM is received on TermCh.
func (a *App) CancelOnSignal(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancelFunc := context.WithCancel(ctx)

	// routine listens for termination signal and cancels the context
	go func() {
		select {
		case sig := <-a.TermCh:
			a.Logger.WithField("signal", sig.String()).Info("got TERM signal, cancelling...")
			cancelFunc()
		case <-ctx.Done():
		}
	}()

	return ctx, cancelFunc
}

func logLevel(level string) int {
	switch strings.ToLower(level) {
	case "debug":
		return model.LogLevelDebug
	case "trace":
		return model.LogLevelTrace
	default:
		return model.LogLevelInfo
	}
}
