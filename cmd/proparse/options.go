package main

import (
	"github.com/tliron/commonlog"

	"github.com/dhamidi/proparse/abl/session"
	"github.com/dhamidi/proparse/abl/unit"
	"github.com/dhamidi/proparse/config"
)

const configFileName = config.FileName

// options are the flags shared by all commands.
type options struct {
	configPath string
	verbosity  int
	logFile    string
}

// load reads the configuration, from --config or from dir, and sets up
// logging from it and the flags.
func (o *options) load(dir string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if o.configPath != "" {
		cfg, err = config.Load(o.configPath)
	} else {
		cfg, err = config.LoadDir(dir)
	}
	if err != nil {
		return nil, err
	}

	verbosity := max(o.verbosity, cfg.Log.Verbosity)
	logFile := o.logFile
	if logFile == "" {
		logFile = cfg.Log.File
	}
	if logFile != "" {
		commonlog.Configure(verbosity, &logFile)
	} else {
		commonlog.Configure(verbosity, nil)
	}
	return cfg, nil
}

func (o *options) session() (*session.Session, error) {
	cfg, err := o.load(".")
	if err != nil {
		return nil, err
	}
	return cfg.Session()
}

// unit opens a unit for file in a session built from the configuration.
func (o *options) unit(file string) (*unit.Unit, error) {
	sess, err := o.session()
	if err != nil {
		return nil, err
	}
	return unit.New(sess, file), nil
}
