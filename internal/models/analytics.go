package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// IncomeGrowth хранит рост показателей в процентах к предыдущему периоду.
type IncomeGrowth struct {
	Today   float64 `json:"today"`
	Weekly  float64 `json:"weekly"`
	Monthly float64 `json:"monthly"`
}

// IncomeStats описывает выручку по завершённым заказам за разные периоды.
type IncomeStats struct {
	Today   decimal.Decimal `json:"today"`
	Weekly  decimal.Decimal `json:"weekly"`
	Monthly decimal.Decimal `json:"monthly"`
	Total   decimal.Decimal `json:"total"`
	Growth  IncomeGrowth    `json:"growth"`
}

// WeeklyIncomePoint хранит выручку и число заказов за день недельной серии.
type WeeklyIncomePoint struct {
	Day    string          `json:"day"`
	Income decimal.Decimal `json:"income"`
	Orders int             `json:"orders"`
}

// CategoryIncome описывает вклад категории товаров в выручку.
type CategoryIncome struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// IncomeReport — агрегированный отчёт для панели администратора.
type IncomeReport struct {
	Stats             IncomeStats         `json:"stats"`
	WeeklySeries      []WeeklyIncomePoint `json:"weekly_series"`
	Categories        []CategoryIncome    `json:"categories"`
	AverageOrderValue decimal.Decimal     `json:"average_order_value"`
	OrdersToday       int                 `json:"orders_today"`
	GeneratedAt       time.Time           `json:"generated_at"`
}
