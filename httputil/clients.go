package httputil

import (
	"net/http"
	"time"
)

type Clients struct {
	Scraping *http.Client // search engines and listing pages
	API      *http.Client // keyed upstream APIs
}

func NewClients() *Clients {
	return &Clients{
		Scraping: &http.Client{Timeout: 10 * time.Second},
		API:      &http.Client{Timeout: 30 * time.Second},
	}
}
