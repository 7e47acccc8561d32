package commands

import (
	"net/http"
	"net/http/cgi"

	derrors "git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/server/handlers"
	"git.home.luguber.info/inful/mdsite/internal/server/httpserver"
)

// CGICmd implements the 'cgi' command. A configuration error still produces
// a 500 response rather than a broken CGI exchange.
type CGICmd struct{}

func (CGICmd) Run(_ *Global, root *CLI) error {
	return cgi.Serve(root.cgiHandler())
}

func (c *CLI) cgiHandler() http.Handler {
	st, err := c.loadSite(nil)
	if err != nil {
		return handlers.ConfigErrorHandler(err, derrors.NewHTTPErrorAdapter(c.Logger()), c.Verbose)
	}
	return httpserver.New(st, httpserver.Options{Logger: c.Logger()}).Handler()
}
