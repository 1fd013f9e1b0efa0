package handlers

import "time"

// CreateShortURLRequest is the request body for creating a short URL.
type CreateShortURLRequest struct {
	Body struct {
		URL string `doc:"The URL to shorten" example:"https://example.com/very/long/path" json:"url" maxLength:"2048" minLength:"1"`
	}
}

// CreateShortURLResponse is the response for a successfully created short URL.
type CreateShortURLResponse struct {
	Location string `doc:"The short URL location" header:"Location"`
	Body     LinkBody
}

// LinkBody describes a stored link.
type LinkBody struct {
	ID          string    `doc:"Link identifier"           json:"id"`
	Code        string    `doc:"The short code"            example:"aZ3kP9q"                            json:"code"`
	ShortURL    string    `doc:"The full short URL"        example:"http://localhost:8888/aZ3kP9q"      json:"shortUrl"`
	OriginalURL string    `doc:"The original URL"          example:"https://example.com/very/long/path" json:"originalUrl"`
	ClickCount  int64     `doc:"Successful redirects"      json:"clickCount"`
	CreatedAt   time.Time `doc:"Creation time"             json:"createdAt"`
	ExpiresAt   time.Time `doc:"Time the link stops working" json:"expiresAt"`
	Expired     bool      `doc:"Whether the link has expired" json:"expired"`
}

// RedirectRequest is the request for redirecting a short URL.
type RedirectRequest struct {
	Code string `doc:"The short code" example:"aZ3kP9q" path:"code"`
}

// RedirectResponse sends the client on to the original URL.
type RedirectResponse struct {
	Status       int
	Location     string `header:"Location"`
	CacheControl string `header:"Cache-Control"`
}

// StatsResponse reports totals over all links.
type StatsResponse struct {
	Body struct {
		TotalLinks    int64 `doc:"Number of stored links"          json:"totalLinks"`
		TotalClicks   int64 `doc:"Sum of click counts"             json:"totalClicks"`
		AverageClicks int64 `doc:"Rounded mean clicks per link"    json:"averageClicks"`
	}
}

// ListLinksRequest filters the admin listing.
type ListLinksRequest struct {
	Search string `doc:"Case-insensitive match on original URL or code" query:"search"`
}

// ListLinksResponse lists stored links newest first.
type ListLinksResponse struct {
	Body struct {
		Links []LinkBody `json:"links"`
		Total int        `json:"total"`
	}
}

// DeleteLinkRequest identifies the link to remove.
type DeleteLinkRequest struct {
	ID string `doc:"Link identifier" path:"id"`
}

