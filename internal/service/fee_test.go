package service

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/wuliu-next/internal/models"
)

func TestCalcHandlingFee(t *testing.T) {
	ratio := decimal.RequireFromString("0.002")

	fee := CalcHandlingFee(models.NewMoneyFromInt(10000), ratio)
	if !fee.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("handling fee = %s, want 20", fee)
	}

	// 非整时向上取整
	fee = CalcHandlingFee(models.NewMoneyFromInt(10001), ratio)
	if !fee.Equal(decimal.NewFromInt(21)) {
		t.Fatalf("handling fee = %s, want 21", fee)
	}

	// 无代收货款时不收手续费
	fee = CalcHandlingFee(models.NewMoneyFromInt(0), ratio)
	if !fee.IsZero() {
		t.Fatalf("handling fee = %s, want 0", fee)
	}
}

func TestCalcStandardFee(t *testing.T) {
	fee := CalcStandardFee(
		decimal.NewFromInt(10),
		decimal.NewFromInt(5),
		decimal.NewFromInt(2),
		decimal.NewFromInt(3),
	)
	if !fee.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("standard fee = %s, want 90", fee)
	}

	// 向下取整
	fee = CalcStandardFee(
		decimal.RequireFromString("10"),
		decimal.RequireFromString("5"),
		decimal.RequireFromString("0.33"),
		decimal.RequireFromString("0.5"),
	)
	if !fee.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("standard fee = %s, want 2", fee)
	}
}

func TestCalcScoreDelta(t *testing.T) {
	ratio := decimal.RequireFromString("1")
	if got := CalcScoreDelta(models.NewMoneyFromInt(120), ratio); got != 120 {
		t.Fatalf("score delta = %d, want 120", got)
	}

	ratio = decimal.RequireFromString("0.1")
	if got := CalcScoreDelta(models.NewMoneyFromInt(101), ratio); got != 11 {
		t.Fatalf("score delta = %d, want 11", got)
	}
}
