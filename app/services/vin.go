package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shashiranjanraj/rigparts/config"
	"github.com/shashiranjanraj/rigparts/pkg/http"
	"github.com/shashiranjanraj/rigparts/pkg/metrics"
	"github.com/shashiranjanraj/rigparts/pkg/validate"
)

// ErrVINUndecodable is returned when the decoder knows nothing about a VIN.
var ErrVINUndecodable = errors.New("vin: no vehicle data for this VIN")

// VehicleInfo is what a VIN decode tells us about a truck.
type VehicleInfo struct {
	VIN          string `json:"vin"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	Engine       string `json:"engine"`
	Transmission string `json:"transmission"`
	GVW          string `json:"gvw"`
}

// VINDecoder looks VINs up in the NHTSA vPIC "DecodeVinValues" API.
type VINDecoder struct {
	baseURL string
	timeout time.Duration
}

func NewVINDecoder() *VINDecoder {
	return &VINDecoder{baseURL: config.VINDecodeURL(), timeout: config.VINDecodeTimeout()}
}

// WithBaseURL points the decoder at another vPIC-compatible endpoint.
func (d *VINDecoder) WithBaseURL(u string) *VINDecoder {
	d.baseURL = strings.TrimRight(u, "/")
	return d
}

type vpicResponse struct {
	Count   int                 `json:"Count"`
	Results []map[string]string `json:"Results"`
}

// Decode returns what the registry knows about vin. Malformed VINs fail
// validation without a network call.
func (d *VINDecoder) Decode(ctx context.Context, vin string) (VehicleInfo, error) {
	vin = strings.ToUpper(strings.TrimSpace(vin))
	if !validate.VIN(vin) {
		return VehicleInfo{}, validate.Field("vin", "The vin must be a 17 character VIN.")
	}
	if d.baseURL == "" {
		return VehicleInfo{}, errors.New("vin: VIN_DECODE_URL is not configured")
	}

	resp, err := http.Get(d.baseURL+"/"+vin).
		Query("format", "json").
		Timeout(d.timeout).
		WithContext(ctx).
		Send()
	if err != nil {
		metrics.VINDecode("error")
		return VehicleInfo{}, fmt.Errorf("vin: decode %s: %w", vin, err)
	}
	if err := resp.Throw(); err != nil {
		metrics.VINDecode("error")
		return VehicleInfo{}, fmt.Errorf("vin: decode %s: %w", vin, err)
	}

	var body vpicResponse
	if err := resp.JSON(&body); err != nil {
		metrics.VINDecode("error")
		return VehicleInfo{}, fmt.Errorf("vin: decode %s: %w", vin, err)
	}
	if len(body.Results) == 0 || strings.TrimSpace(body.Results[0]["Make"]) == "" {
		metrics.VINDecode("miss")
		return VehicleInfo{}, ErrVINUndecodable
	}

	r := body.Results[0]
	info := VehicleInfo{
		VIN:          vin,
		Make:         titleCase(r["Make"]),
		Model:        strings.TrimSpace(r["Model"]),
		Engine:       joinNonEmpty(" ", r["EngineManufacturer"], r["EngineModel"]),
		Transmission: joinNonEmpty(" ", r["TransmissionStyle"], r["TransmissionSpeeds"]+speedSuffix(r["TransmissionSpeeds"])),
		GVW:          strings.TrimSpace(r["GVWR"]),
	}
	info.Year, _ = strconv.Atoi(strings.TrimSpace(r["ModelYear"]))

	metrics.VINDecode("hit")
	return info, nil
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func speedSuffix(speeds string) string {
	if strings.TrimSpace(speeds) == "" {
		return ""
	}
	return "-speed"
}
