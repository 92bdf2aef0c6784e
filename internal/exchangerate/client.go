// Package exchangerate реализует клиент внешнего API курсов валют.
package exchangerate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client — HTTP-клиент источника курсов. Запрос ограничен таймаутом,
// чтобы зависший апстрим не подвесил промах кеша у вызывающего.
type Client struct {
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт клиент источника курсов.
func NewClient(apiURL string, timeout time.Duration) *Client {
	return &Client{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type ratesResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// FetchRates запрашивает курсы перечисленных валют к базовой.
// Возвращаемая мапа: код валюты -> сколько base стоит одна её единица.
func (c *Client) FetchRates(ctx context.Context, base string, symbols []string) (map[string]float64, error) {
	const op = "exchangerate.FetchRates"

	query := url.Values{}
	query.Set("base", base)
	if len(symbols) > 0 {
		query.Set("symbols", strings.Join(symbols, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	var parsed ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(parsed.Rates) == 0 {
		return nil, fmt.Errorf("%s: empty rates in response", op)
	}
	return parsed.Rates, nil
}
