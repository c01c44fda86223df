package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"prewalk_engine/models"
)

const (
	defaultBaseURL = "https://www.zohoapis.com/crm/v2"
	defaultAuthURL = "https://accounts.zoho.com/oauth/v2/token"

	pageSize   = 200 // API maximum per page
	maxRecords = 5000
	pagePause  = 500 * time.Millisecond
)

// Client reads deals from the CRM. Access tokens are minted from a
// long-lived refresh token and reused until shortly before expiry.
type Client struct {
	clientID     string
	clientSecret string
	refreshToken string
	baseURL      string
	authURL      string
	client       *http.Client

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// NewClient builds a CRM client. A nil client gets a default one.
func NewClient(clientID, clientSecret, refreshToken string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
		baseURL:      defaultBaseURL,
		authURL:      defaultAuthURL,
		client:       client,
	}
}

type dealRecord struct {
	DealName    string          `json:"Deal_Name"`
	Amount      float64         `json:"Amount"`
	Stage       string          `json:"Stage"`
	ContactName json.RawMessage `json:"Contact_Name"`
	ClosingDate string          `json:"Closing_Date"`
}

// FetchDeals pages through the Deals module and maps each record into the
// snapshot shape.
func (c *Client) FetchDeals(ctx context.Context) ([]models.CachedDeal, error) {
	var deals []models.CachedDeal

	for page := 1; len(deals) < maxRecords; page++ {
		records, more, err := c.fetchPage(ctx, page)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			log.Printf("Warning: deals fetch stopped at page %d: %v", page, err)
			break
		}
		if len(records) == 0 {
			break
		}

		for _, r := range records {
			deals = append(deals, models.CachedDeal{
				Name:        r.DealName,
				Amount:      r.Amount,
				Stage:       r.Stage,
				ContactName: contactName(r.ContactName),
				ClosingDate: r.ClosingDate,
			})
		}
		log.Printf("Fetched deals page %d: %d records", page, len(records))

		if !more {
			break
		}
		select {
		case <-time.After(pagePause):
		case <-ctx.Done():
			return deals, ctx.Err()
		}
	}

	if len(deals) > maxRecords {
		deals = deals[:maxRecords]
	}
	return deals, nil
}

func (c *Client) fetchPage(ctx context.Context, page int) ([]dealRecord, bool, error) {
	token, err := c.accessTokenLocked(ctx)
	if err != nil {
		return nil, false, err
	}

	params := url.Values{}
	params.Set("page", fmt.Sprint(page))
	params.Set("per_page", fmt.Sprint(pageSize))
	params.Set("fields", "Deal_Name,Amount,Stage,Contact_Name,Closing_Date")

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/Deals?"+params.Encode(), nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Authorization", "Zoho-oauthtoken "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	// 204 means the module has no records at all.
	if resp.StatusCode == http.StatusNoContent {
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, false, fmt.Errorf("crm deals status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Data []dealRecord `json:"data"`
		Info struct {
			MoreRecords bool `json:"more_records"`
		} `json:"info"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("decoding deals page %d: %w", page, err)
	}
	return payload.Data, payload.Info.MoreRecords, nil
}

// accessTokenLocked returns a valid access token, refreshing through the
// OAuth endpoint when the cached one is gone or about to expire.
func (c *Client) accessTokenLocked(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.expiresAt) {
		return c.accessToken, nil
	}

	log.Printf("Refreshing CRM access token")

	params := url.Values{}
	params.Set("refresh_token", c.refreshToken)
	params.Set("client_id", c.clientID)
	params.Set("client_secret", c.clientSecret)
	params.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, "POST", c.authURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("refreshing access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("token refresh status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token refresh returned no access token")
	}

	expiresIn := payload.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 3600
	}
	c.accessToken = payload.AccessToken
	// Refresh five minutes early rather than racing the expiry.
	c.expiresAt = time.Now().Add(time.Duration(expiresIn-300) * time.Second)
	return c.accessToken, nil
}

// contactName handles the API sending Contact_Name as either an object
// with a name field or a bare string.
func contactName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Name != "" {
		return obj.Name
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}
