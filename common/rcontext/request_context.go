package rcontext

import (
	"context"
	"net/http"

	"github.com/gatherpics/media-ingest/common/config"
	"github.com/sirupsen/logrus"
)

func Initial() RequestContext {
	return RequestContext{
		Context: context.Background(),
		Log:     logrus.WithFields(logrus.Fields{"nocontext": true}),
		Config:  config.Get(),
		Request: nil,
	}.populate()
}

type RequestContext struct {
	context.Context

	// These are also stored on the context object itself
	Log     *logrus.Entry      // gp.logger
	Config  *config.MainConfig // gp.serverConfig
	Request *http.Request      // gp.request
}

func (c RequestContext) populate() RequestContext {
	c.Context = context.WithValue(c.Context, "gp.logger", c.Log)
	c.Context = context.WithValue(c.Context, "gp.serverConfig", c.Config)
	c.Context = context.WithValue(c.Context, "gp.request", c.Request)
	return c
}

func (c RequestContext) ReplaceLogger(log *logrus.Entry) RequestContext {
	ctx := context.WithValue(c.Context, "gp.logger", log)
	return RequestContext{
		Context: ctx,
		Log:     log,
		Config:  c.Config,
		Request: c.Request,
	}
}

func (c RequestContext) LogWithFields(fields logrus.Fields) RequestContext {
	return c.ReplaceLogger(c.Log.WithFields(fields))
}

func (c RequestContext) WithCancel() (RequestContext, context.CancelFunc) {
	ctx, cancel := context.WithCancel(c.Context)
	return RequestContext{
		Context: ctx,
		Log:     c.Log,
		Config:  c.Config,
		Request: c.Request,
	}, cancel
}

func ForRequest(r *http.Request, log *logrus.Entry) RequestContext {
	return RequestContext{
		Context: r.Context(),
		Log:     log,
		Config:  config.Get(),
		Request: r,
	}.populate()
}
