package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/rigparts/app/models"
	rphttp "github.com/shashiranjanraj/rigparts/pkg/http"
	"github.com/shashiranjanraj/rigparts/pkg/testkit"
)

const (
	testVIN   = "1FUJGLDR9KLKA1234"
	vpicBase  = "https://vpic.test/api/vehicles/DecodeVinValues"
	vpicReply = `{"Count":1,"Results":[{"Make":"FREIGHTLINER","Model":"Cascadia","ModelYear":"2019",
		"EngineManufacturer":"Detroit","EngineModel":"DD15","TransmissionStyle":"Automated Manual",
		"TransmissionSpeeds":"12","GVWR":"Class 8: 33,001 lb and above"}]}`
)

func mockVPIC(t *testing.T, resp testkit.MockResponse) *testkit.MockTransport {
	t.Helper()
	mt := testkit.NewMockTransport().On(vpicBase, resp)
	rphttp.DefaultClient.Transport = mt
	t.Cleanup(rphttp.ResetTransport)
	return mt
}

func TestVINDecode(t *testing.T) {
	mt := mockVPIC(t, testkit.MockResponse{Body: vpicReply})

	info, err := NewVINDecoder().WithBaseURL(vpicBase).Decode(bg, " 1fujgldr9klka1234 ")
	require.NoError(t, err)
	assert.Equal(t, testVIN, info.VIN)
	assert.Equal(t, "Freightliner", info.Make)
	assert.Equal(t, "Cascadia", info.Model)
	assert.Equal(t, 2019, info.Year)
	assert.Equal(t, "Detroit DD15", info.Engine)
	assert.Equal(t, "Automated Manual 12-speed", info.Transmission)
	assert.Equal(t, "Class 8: 33,001 lb and above", info.GVW)

	require.Len(t, mt.Calls(), 1)
	assert.Equal(t, vpicBase+"/"+testVIN+"?format=json", mt.Calls()[0])
}

func TestVINDecode_BadInput(t *testing.T) {
	mt := mockVPIC(t, testkit.MockResponse{Body: vpicReply})

	_, err := NewVINDecoder().WithBaseURL(vpicBase).Decode(bg, "1FUJGLDR9KLKA123O")
	assert.Contains(t, fields(t, err), "vin")
	assert.Empty(t, mt.Calls())
}

func TestVINDecode_Unknown(t *testing.T) {
	mockVPIC(t, testkit.MockResponse{Body: `{"Count":1,"Results":[{"Make":"","ErrorCode":"8"}]}`})

	_, err := NewVINDecoder().WithBaseURL(vpicBase).Decode(bg, testVIN)
	assert.ErrorIs(t, err, ErrVINUndecodable)
}

func TestTruckIntake_EnrichesBlankFields(t *testing.T) {
	mockVPIC(t, testkit.MockResponse{Body: vpicReply})
	svc := NewTruckService(newDB(t), NewVINDecoder().WithBaseURL(vpicBase))

	p, err := svc.Intake(bg, ProductInput{VIN: testVIN, Engine: "DD15 rebuilt 2023", RetailPrice: d("74500")})
	require.NoError(t, err)
	assert.Equal(t, models.KindTruck, p.Kind)
	assert.Equal(t, "2019 Freightliner Cascadia", p.Name)
	assert.Equal(t, "Freightliner", p.Make)
	assert.Equal(t, "DD15 rebuilt 2023", p.Engine, "admin-entered fields win")
	assert.Equal(t, 2019, p.Year)
	assert.Nil(t, p.SKU)
}

func TestTruckIntake_DecodeFailureDoesNotBlock(t *testing.T) {
	mockVPIC(t, testkit.MockResponse{Err: errors.New("connection refused")})
	svc := NewTruckService(newDB(t), NewVINDecoder().WithBaseURL(vpicBase))

	p, err := svc.Intake(bg, ProductInput{VIN: testVIN, Name: "Cascadia day cab", Make: "Freightliner", RetailPrice: d("52000")})
	require.NoError(t, err)
	assert.Equal(t, "Cascadia day cab", p.Name)
	assert.Empty(t, p.TruckModel)

	_, err = svc.Intake(bg, ProductInput{Name: "No VIN", RetailPrice: d("1")})
	assert.Contains(t, fields(t, err), "vin")
}
