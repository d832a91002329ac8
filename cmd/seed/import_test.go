package main

import (
	"testing"

	"github.com/ikkim/restaurant-ops-backend/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func importSheet(t *testing.T, rows [][]interface{}) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })

	sheet := f.GetSheetName(0)
	header := []interface{}{"Name", "Phone", "Address", "Concept", "Plan", "Channel ID", "Channel secret", "Access token"}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	return f
}

func TestReadStores(t *testing.T) {
	f := importSheet(t, [][]interface{}{
		{"Izakaya Taro", "03-1234-5678", "Shibuya, Tokyo", "Yakitori", "pro", "1650000000", "secret", "token"},
		{"Sushi Hana", "06-9876-5432", "Namba, Osaka", "", "", "1650000001", "secret-2", "token-2"},
		{"Ramen Ken", "03-1111-2222", "Ikebukuro, Tokyo", "", "", "1650000002", "secret-3"},
		{"izakaya taro", "03-0000-0000", "Shinjuku, Tokyo"},
		{"12345", "03-0000-0000", "Ueno, Tokyo"},
		{"No Phone", "", "Ginza, Tokyo"},
	})

	requests, skipped, err := readStores(f, 7, "https://hooks.example.com/line")
	require.NoError(t, err)
	assert.Equal(t, 4, skipped)
	require.Len(t, requests, 2)

	taro := requests[0]
	assert.Equal(t, "Izakaya Taro", taro.BasicInfo.Name)
	assert.Equal(t, wizard.PlanPro, taro.BasicInfo.Plan)
	assert.Equal(t, "https://hooks.example.com/line/izakaya-taro", taro.LineSetup.WebhookURL)
	assert.Equal(t, "token", taro.LineSetup.AccessToken)
	assert.True(t, taro.AISetup.UseCommonKey)

	hana := requests[1]
	assert.Equal(t, wizard.PlanStandard, hana.BasicInfo.Plan)
	assert.Equal(t, "1650000001", hana.LineSetup.ChannelID)
}

func TestImportKey(t *testing.T) {
	assert.Equal(t, importKey(7, "Izakaya Taro"), importKey(7, "izakaya taro"))
	assert.NotEqual(t, importKey(7, "Izakaya Taro"), importKey(8, "Izakaya Taro"))
	assert.LessOrEqual(t, len(importKey(7, "Izakaya Taro")), 64)
}
