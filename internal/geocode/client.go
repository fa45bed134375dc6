package geocode

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client resolves coordinates to a formatted address through an external
// geocoding HTTP API. Failures here are always soft for callers: the address
// field is simply left untouched.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ReverseGeocode returns the first result's formatted address, or an error
// when the service yields no usable result.
func (c *Client) ReverseGeocode(lat, lng float64) (string, error) {
	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%f,%f", lat, lng))
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	resp, err := c.httpClient.Get(c.baseURL + "?" + params.Encode())
	if err != nil {
		return "", fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read geocoding response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocoding request failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result geocodeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	if result.Status != "" && result.Status != "OK" {
		return "", fmt.Errorf("geocoding returned status %s", result.Status)
	}
	if len(result.Results) == 0 || result.Results[0].FormattedAddress == "" {
		return "", fmt.Errorf("geocoding returned no usable result")
	}

	return result.Results[0].FormattedAddress, nil
}
