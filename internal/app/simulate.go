package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"marketwatch/internal/marketdata"
	"marketwatch/internal/service"
)

// SimulateAlert 构造一条虚拟行情并走一遍异动告警流程。
func (a *App) SimulateAlert(ctx context.Context, pair string, changePct, last float64) error {
	if !a.Config.Alerting.Enabled {
		return errors.New("alerting 未启用")
	}

	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("未配置任何告警通道")
	}

	item := simulatedItem(pair, changePct, last)
	svc := service.New(a.Config, nil, service.Deps{Notifier: notifier}, a.Logger)
	if sent := svc.EvaluateMovers(ctx, time.Now().UTC(), []marketdata.MarketItem{item}); sent == 0 {
		return errors.New("未发送告警: 涨跌幅低于阈值、交易对被过滤或发送失败")
	}
	return nil
}

func simulatedItem(pair string, changePct, last float64) marketdata.MarketItem {
	base, quote, _ := strings.Cut(normalizePair(pair), "-")
	dir := marketdata.ChangeUp
	if changePct < 0 {
		dir = marketdata.ChangeDown
	}
	item := marketdata.MarketItem{
		Pair:      marketdata.PairName(base, quote),
		Base:      base,
		Quote:     quote,
		ChangePct: &changePct,
		ChangeDir: dir,
		History:   []float64{},
	}
	if last > 0 {
		item.PriceLast = &last
	}
	return item
}
