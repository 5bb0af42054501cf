// Package client talks to the DarkOps Lab backend. A Client is created once
// at program start and passed to whatever needs the session or the tracker.
package client

import (
	"net/http"

	"go.uber.org/zap"
)

type Client struct {
	Sessions *Manager
	Tracker  *Tracker

	conf  Config
	http  *http.Client
	store Store
	log   *zap.Logger
}

// New builds a Client over store. A nil store keeps state in memory and a
// nil logger discards output.
func New(conf Config, store Store, log *zap.Logger) (*Client, error) {
	conf = conf.withDefaults()
	if _, err := ParseNicknameMode(string(conf.NicknameMode)); err != nil {
		return nil, err
	}
	if store == nil {
		store = NewMemoryStore()
	}
	if log == nil {
		log = zap.NewNop()
	}

	httpClient := &http.Client{Timeout: conf.Timeout}
	a := &api{base: conf.BaseURL, client: httpClient}
	sessions := newManager(a, store, conf.NicknameMode, log)

	return &Client{
		Sessions: sessions,
		Tracker:  newTracker(a, sessions, log),
		conf:     conf,
		http:     httpClient,
		store:    store,
		log:      log,
	}, nil
}

func (c *Client) Config() Config { return c.conf }

// Close releases idle connections and the state store.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return c.store.Close()
}
