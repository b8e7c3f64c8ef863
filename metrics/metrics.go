package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BarsProcessed  = prometheus.NewCounter(prometheus.CounterOpts{Name: "orbot_bars_processed_total", Help: "Bars fed through the state machine"})
	SignalsEmitted = prometheus.NewCounter(prometheus.CounterOpts{Name: "orbot_breakout_signals_total", Help: "Breakout signals emitted"})
	TradesOpened   = prometheus.NewCounter(prometheus.CounterOpts{Name: "orbot_trades_opened_total", Help: "Bracket positions opened"})
	TradesClosed   = prometheus.NewCounter(prometheus.CounterOpts{Name: "orbot_trades_closed_total", Help: "Positions closed"})
	RiskDenials    = prometheus.NewCounter(prometheus.CounterOpts{Name: "orbot_risk_denials_total", Help: "Trades blocked by the risk gate"})
	Balance        = prometheus.NewGauge(prometheus.GaugeOpts{Name: "orbot_account_balance", Help: "Current account balance"})
	DailyPL        = prometheus.NewGauge(prometheus.GaugeOpts{Name: "orbot_daily_pnl", Help: "Daily P&L including unrealized"})
	EngineState    = prometheus.NewGauge(prometheus.GaugeOpts{Name: "orbot_engine_state", Help: "State machine phase (ordinal)"})
)

func init() {
	prometheus.MustRegister(
		BarsProcessed,
		SignalsEmitted,
		TradesOpened,
		TradesClosed,
		RiskDenials,
		Balance,
		DailyPL,
		EngineState,
	)
}

// Handler exposes the default registry for the control surface.
func Handler() http.Handler {
	return promhttp.Handler()
}
