package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"volley/testserver"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	server := testserver.NewServer()

	fmt.Printf("Test server listening on %s\n", *addr)
	if err := http.ListenAndServe(*addr, server.Handler()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
