package model

import "github.com/shopspring/decimal"

// ChartBucket is one aggregated data point feeding a chart.
type ChartBucket struct {
	Key   string          `json:"key"`
	Label string          `json:"label"`
	Count int             `json:"count"`
	Sum   decimal.Decimal `json:"sum"`
	Color string          `json:"color,omitempty"`
}
