package service

import (
	"github.com/shopspring/decimal"

	"github.com/wuliu-next/internal/models"
)

// CalcHandlingFee 计算代收手续费：ceil(货款 × 手续费比例)，货款为 0 时不收
func CalcHandlingFee(cargoPrice models.Money, ratio decimal.Decimal) models.Money {
	if !cargoPrice.IsPositive() {
		return models.NewMoneyFromDecimal(decimal.Zero)
	}
	return models.NewMoneyFromDecimal(cargoPrice.Mul(ratio).Ceil())
}

// CalcStandardFee 计算标准运费：(发货单价 + 收货单价) × 体积 × 重量，取整
func CalcStandardFee(srcUnitPrice, dstUnitPrice, volume, weight decimal.Decimal) models.Money {
	total := srcUnitPrice.Add(dstUnitPrice).Mul(volume).Mul(weight)
	return models.NewMoneyFromDecimal(total.Floor())
}

// CalcScoreDelta 计算积分增量：ceil(运费 × 积分比例)
func CalcScoreDelta(fee models.Money, ratio decimal.Decimal) int {
	return int(fee.Mul(ratio).Ceil().IntPart())
}
