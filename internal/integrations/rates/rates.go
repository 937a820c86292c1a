// Package rates fetches daily currency exchange rates for reporting
// balances in a secondary currency.
package rates

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Kamran7679/finance-tracker/internal/config"
	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"
)

// Client handles the upstream SOAP rates service.
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger

	mu       sync.Mutex
	cached   map[string]float64
	cachedAt time.Time
}

// NewClient initializes a new rates client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url: cfg.RatesURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// buildSOAPRequest creates a SOAP request for today's currency rates
func (c *Client) buildSOAPRequest() string {
	onDate := time.Now().Format("2006-01-02")
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
		<soap12:Envelope xmlns:soap12="http://www.w3.org/2003/05/soap-envelope">
			<soap12:Body>
				<GetCursOnDate xmlns="http://web.cbr.ru/">
					<On_date>%s</On_date>
				</GetCursOnDate>
			</soap12:Body>
		</soap12:Envelope>`, onDate)
}

// sendRequest sends the SOAP request to the rates service
func (c *Client) sendRequest(soapRequest string) ([]byte, error) {
	req, err := http.NewRequest("POST", c.url, bytes.NewBuffer([]byte(soapRequest)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")
	req.Header.Set("SOAPAction", "http://web.cbr.ru/GetCursOnDate")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}

	c.log.Debugf("Rates XML response: %s", string(body))
	return body, nil
}

// parseXMLResponse extracts per-currency rates from the response
func (c *Client) parseXMLResponse(rawBody []byte) (map[string]float64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %v", err)
	}

	elements := doc.FindElements("//ValuteData/ValuteCursOnDate")
	if len(elements) == 0 {
		return nil, fmt.Errorf("no rate data found in XML")
	}

	rates := make(map[string]float64)
	for _, el := range elements {
		codeEl := el.FindElement("./VchCode")
		cursEl := el.FindElement("./Vcurs")
		nomEl := el.FindElement("./Vnom")
		if codeEl == nil || cursEl == nil || nomEl == nil {
			continue
		}
		var curs, nom float64
		if _, err := fmt.Sscanf(cursEl.Text(), "%f", &curs); err != nil {
			continue
		}
		if _, err := fmt.Sscanf(nomEl.Text(), "%f", &nom); err != nil || nom == 0 {
			continue
		}
		rates[strings.TrimSpace(codeEl.Text())] = curs / nom
	}
	return rates, nil
}

// GetRates retrieves today's exchange rates, cached for an hour.
func (c *Client) GetRates() (map[string]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && time.Since(c.cachedAt) < time.Hour {
		return c.cached, nil
	}

	body, err := c.sendRequest(c.buildSOAPRequest())
	if err != nil {
		return nil, err
	}
	rates, err := c.parseXMLResponse(body)
	if err != nil {
		return nil, err
	}

	c.cached = rates
	c.cachedAt = time.Now()
	c.log.Infof("Retrieved %d exchange rates", len(rates))
	return rates, nil
}

// GetRate returns the rate for a single currency code.
func (c *Client) GetRate(code string) (float64, error) {
	rates, err := c.GetRates()
	if err != nil {
		return 0, err
	}
	rate, ok := rates[strings.ToUpper(code)]
	if !ok {
		return 0, fmt.Errorf("no rate for currency %s", code)
	}
	return rate, nil
}
