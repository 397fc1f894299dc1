// Package vies talks to the EU VAT Information Exchange System, a SOAP
// registry exposing a single checkVat operation. The envelope is small and
// fixed, so it is built and parsed directly with encoding/xml.
package vies

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultEndpoint is the production VIES SOAP endpoint
	DefaultEndpoint = "https://ec.europa.eu/taxation_customs/vies/services/checkVatService"
	defaultTimeout  = 8 * time.Second
)

// CheckVatResult is the registry's answer for a VAT number
type CheckVatResult struct {
	Valid   bool
	Name    string
	Address string
}

// Client performs VAT number lookups against the external registry
type Client interface {
	CheckVat(ctx context.Context, countryCode, vatNumber string) (CheckVatResult, error)
}

type soapClient struct {
	httpClient *http.Client
	endpoint   string
}

// NewClient builds a SOAP client against the production endpoint with a
// bounded request timeout.
func NewClient() Client {
	return NewClientWithEndpoint(DefaultEndpoint)
}

// NewClientWithEndpoint builds a SOAP client against a custom endpoint
// (used by tests pointing at a local server).
func NewClientWithEndpoint(endpoint string) Client {
	return &soapClient{
		httpClient: &http.Client{Timeout: defaultTimeout},
		endpoint:   endpoint,
	}
}

type checkVatEnvelope struct {
	XMLName xml.Name `xml:"soapenv:Envelope"`
	NS      string   `xml:"xmlns:soapenv,attr"`
	URN     string   `xml:"xmlns:urn,attr"`
	Body    struct {
		CheckVat struct {
			CountryCode string `xml:"urn:countryCode"`
			VatNumber   string `xml:"urn:vatNumber"`
		} `xml:"urn:checkVat"`
	} `xml:"soapenv:Body"`
}

type checkVatResponse struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Response struct {
			Valid   bool   `xml:"valid"`
			Name    string `xml:"name"`
			Address string `xml:"address"`
		} `xml:"checkVatResponse"`
		Fault struct {
			FaultString string `xml:"faultstring"`
		} `xml:"Fault"`
	} `xml:"Body"`
}

func (c *soapClient) CheckVat(ctx context.Context, countryCode, vatNumber string) (CheckVatResult, error) {
	envelope := checkVatEnvelope{
		NS:  "http://schemas.xmlsoap.org/soap/envelope/",
		URN: "urn:ec.europa.eu:taxud:vies:services:checkVat:types",
	}
	envelope.Body.CheckVat.CountryCode = countryCode
	envelope.Body.CheckVat.VatNumber = vatNumber

	payload, err := xml.Marshal(envelope)
	if err != nil {
		return CheckVatResult{}, fmt.Errorf("failed to build checkVat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		bytes.NewReader(append([]byte(xml.Header), payload...)))
	if err != nil {
		return CheckVatResult{}, err
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return CheckVatResult{}, fmt.Errorf("vies request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return CheckVatResult{}, fmt.Errorf("failed to read vies response: %w", err)
	}

	var parsed checkVatResponse
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return CheckVatResult{}, fmt.Errorf("malformed vies response: %w", err)
	}
	if parsed.Body.Fault.FaultString != "" {
		return CheckVatResult{}, fmt.Errorf("vies fault: %s", parsed.Body.Fault.FaultString)
	}
	if resp.StatusCode != http.StatusOK {
		return CheckVatResult{}, fmt.Errorf("vies returned status %d", resp.StatusCode)
	}

	return CheckVatResult{
		Valid:   parsed.Body.Response.Valid,
		Name:    cleanField(parsed.Body.Response.Name),
		Address: cleanField(parsed.Body.Response.Address),
	}, nil
}

// VIES reports missing trader details as "---"
func cleanField(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "---" {
		return ""
	}
	return trimmed
}
