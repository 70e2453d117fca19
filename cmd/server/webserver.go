package main

import (
	"net/http"
	"time"
)

// webServer serves the worker endpoint on /ws, single views on /view and the
// rendered frames in dir on /.
func webServer(addr string, hub, view http.Handler, dir string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.Handle("/view", view)
	mux.Handle("/", http.FileServer(http.Dir(dir)))

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
