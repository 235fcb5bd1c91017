package normalize

import (
	"sort"
	"strings"

	"PredBoard/internal/domain/models"
	xutil "PredBoard/pkg/util"
)

// SnapshotPrefixes is the nesting priority for per-ticker payloads: the most
// nested prediction object first, the bare top level last.
var SnapshotPrefixes = []Path{
	"latest.result.prediction",
	"latest.result",
	"latest.prediction",
	"latest",
	"result.prediction",
	"result",
	"prediction",
	"",
}

// RecordPrefixes is used for list elements (signals, points, candidates),
// which are usually flat but sometimes wrap the values.
var RecordPrefixes = []Path{"", "prediction", "result", "metrics"}

var (
	snapshotMapping = Mapping{
		Field("recommendation", KindString, SnapshotPrefixes, "signal", "action", "rec"),
		Field("quality", KindString, SnapshotPrefixes, "quality_label", "grade"),
		Field("confidence", KindNumber, SnapshotPrefixes, "conf", "confidence_pct", "probability"),
		Field("price_now", KindNumber, SnapshotPrefixes, "last_price", "pnow", "close", "price"),
		Field("price_pred", KindNumber, SnapshotPrefixes, "predicted_price", "pred_price", "ppred", "price_target"),
		Field("ret_ens_pct", KindNumber, SnapshotPrefixes, "ret_pct", "expected_return_pct", "return_pct", "ret"),
		Field("mae", KindNumber, SnapshotPrefixes, "metrics.mae"),
		Field("rmse", KindNumber, SnapshotPrefixes, "metrics.rmse"),
		Field("mape", KindNumber, SnapshotPrefixes, "metrics.mape"),
		Field("date_base", KindString, SnapshotPrefixes, "date", "as_of"),
		Field("fundamental_flag", KindString, SnapshotPrefixes, "fundamental", "fund_flag"),
	}

	signalMapping = Mapping{
		Field("ticker", KindString, RecordPrefixes, "symbol"),
		Field("recommendation", KindString, RecordPrefixes, "signal", "action", "rec"),
		Field("quality", KindString, RecordPrefixes, "quality_label", "grade"),
		Field("confidence", KindNumber, RecordPrefixes, "conf", "confidence_pct", "probability"),
		Field("price_now", KindNumber, RecordPrefixes, "last_price", "pnow", "close", "price"),
		Field("price_pred", KindNumber, RecordPrefixes, "predicted_price", "pred_price", "ppred"),
		Field("ret_ens_pct", KindNumber, RecordPrefixes, "ret_pct", "expected_return_pct", "return_pct", "ret"),
		Field("fundamental_flag", KindString, RecordPrefixes, "fundamental", "fund_flag"),
		Field("date_base", KindString, RecordPrefixes, "date", "as_of"),
	}

	pointMapping = Mapping{
		Field("date_base", KindString, RecordPrefixes, "date", "ds", "timestamp"),
		Field("price_now", KindNumber, RecordPrefixes, "price_real", "actual", "close", "price"),
		Field("price_pred", KindNumber, RecordPrefixes, "predicted_price", "predicted", "yhat", "pred"),
	}

	candidateMapping = Mapping{
		Field("rank", KindNumber, RecordPrefixes, "position"),
		Field("ticker", KindString, RecordPrefixes, "symbol"),
		Field("score", KindNumber, RecordPrefixes, "total_score"),
		Field("quality", KindString, RecordPrefixes, "quality_label", "grade"),
		Field("rsi_wilder", KindNumber, RecordPrefixes, "rsi", "rsi_14"),
		Field("sharpe_ratio", KindNumber, RecordPrefixes, "sharpe"),
		Field("beta_spy", KindNumber, RecordPrefixes, "beta"),
		Field("volatility", KindNumber, RecordPrefixes, "vol", "volatility_ann"),
		Field("trend_3m_pct", KindNumber, RecordPrefixes, "trend_3m", "trend_pct"),
		Field("fundamental_flag", KindString, RecordPrefixes, "fundamental", "fund_flag"),
	}

	reportPrefixes = []Path{"", "meta", "report"}
	reportMapping  = Mapping{
		Field("generated_at", KindTime, reportPrefixes, "generated", "timestamp"),
		Field("n_universe", KindNumber, reportPrefixes, "universe_size"),
		Field("ia_available", KindBool, reportPrefixes, "ai_available"),
	}

	assetMapping = Mapping{
		Field("ticker", KindString, nil, "symbol"),
		Field("name", KindString, nil, "long_name", "short_name", "company"),
		Field("exchange", KindString, nil, "market"),
		Field("country", KindString, nil, "country_code"),
		Field("sector", KindString, nil, "industry"),
	}
)

// ExtractSnapshot flattens a /dashboard/latest/{ticker} payload.
func ExtractSnapshot(ticker string, raw any) models.Snapshot {
	r := snapshotMapping.Extract(raw)
	return models.Snapshot{
		Ticker:          ticker,
		Recommendation:  r.String("recommendation"),
		Quality:         r.String("quality"),
		Confidence:      r.Float("confidence"),
		PriceNow:        r.Float("price_now"),
		PricePred:       r.Float("price_pred"),
		ReturnPct:       r.Float("ret_ens_pct"),
		MAE:             r.Float("mae"),
		RMSE:            r.Float("rmse"),
		MAPE:            r.Float("mape"),
		DateBase:        r.String("date_base"),
		FundamentalFlag: r.String("fundamental_flag"),
	}
}

// ExtractTickers reads the ticker list. Elements may be strings or objects
// with a symbol/ticker key. Blanks and duplicates are dropped; order is kept.
func ExtractTickers(raw any) []models.Ticker {
	items := Items(raw, "tickers", "data", "universe", "symbols", "data.tickers")
	out := make([]models.Ticker, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		var t models.Ticker
		switch v := it.(type) {
		case string:
			t.Symbol = strings.TrimSpace(v)
		case map[string]any:
			r := assetMapping.Extract(v)
			t.Symbol = r.String("ticker")
			t.Name = r.String("name")
		}
		if t.Symbol == "" {
			continue
		}
		if _, dup := seen[t.Symbol]; dup {
			continue
		}
		seen[t.Symbol] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ExtractSignals reads a signal list, bare or wrapped. Records without a
// ticker are skipped.
func ExtractSignals(raw any) []models.Signal {
	items := Items(raw, "signals", "data", "results", "items", "data.signals")
	out := make([]models.Signal, 0, len(items))
	for _, it := range items {
		r := signalMapping.Extract(it)
		ticker := r.String("ticker")
		if ticker == "" {
			continue
		}
		out = append(out, models.Signal{
			Ticker:          ticker,
			Recommendation:  r.String("recommendation"),
			Quality:         r.String("quality"),
			Confidence:      r.Float("confidence"),
			PriceNow:        r.Float("price_now"),
			PricePred:       r.Float("price_pred"),
			ReturnPct:       r.Float("ret_ens_pct"),
			FundamentalFlag: r.String("fundamental_flag"),
			DateBase:        r.String("date_base"),
		})
	}
	return out
}

// ExtractSeries reads a prediction series. Points without a date are
// skipped. When every date parses, points are put in chronological order.
func ExtractSeries(raw any) []models.PredictionPoint {
	items := Items(raw, "data", "predictions", "series", "summary", "points", "pred.data")
	out := make([]models.PredictionPoint, 0, len(items))
	for _, it := range items {
		r := pointMapping.Extract(it)
		date := r.String("date_base")
		if date == "" {
			continue
		}
		out = append(out, models.PredictionPoint{
			DateBase:  date,
			PriceNow:  r.Float("price_now"),
			PricePred: r.Float("price_pred"),
		})
	}
	sortChronologically(out)
	return out
}

func sortChronologically(points []models.PredictionPoint) {
	type keyed struct {
		p models.PredictionPoint
		t int64
	}
	ks := make([]keyed, len(points))
	for i, p := range points {
		t, ok := xutil.ParseTime(p.DateBase)
		if !ok {
			return
		}
		ks[i] = keyed{p: p, t: t.UnixNano()}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].t < ks[j].t })
	for i := range ks {
		points[i] = ks[i].p
	}
}

// ExtractScreener reads the screener report. Candidates without a rank get
// their 1-based position.
func ExtractScreener(raw any) models.ScreenerReport {
	meta := reportMapping.Extract(raw)
	rep := models.ScreenerReport{
		GeneratedAt: meta.Time("generated_at"),
		NUniverse:   meta.Int("n_universe"),
		IAAvailable: meta.Bool("ia_available"),
	}
	items := Items(raw, "candidates", "data.candidates", "report.candidates", "results", "data")
	rep.Candidates = make([]models.ScreenerCandidate, 0, len(items))
	for i, it := range items {
		r := candidateMapping.Extract(it)
		ticker := r.String("ticker")
		if ticker == "" {
			continue
		}
		rank := i + 1
		if n := r.Int("rank"); n != nil {
			rank = *n
		}
		rep.Candidates = append(rep.Candidates, models.ScreenerCandidate{
			Rank:            rank,
			Ticker:          ticker,
			Score:           r.Float("score"),
			Quality:         r.String("quality"),
			RSIWilder:       r.Float("rsi_wilder"),
			SharpeRatio:     r.Float("sharpe_ratio"),
			BetaSPY:         r.Float("beta_spy"),
			Volatility:      r.Float("volatility"),
			Trend3mPct:      r.Float("trend_3m_pct"),
			FundamentalFlag: r.String("fundamental_flag"),
		})
	}
	return rep
}

// ExtractAssets reads the asset catalogue.
func ExtractAssets(raw any) []models.Asset {
	items := Items(raw, "assets", "data", "items")
	out := make([]models.Asset, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, models.Asset{Ticker: s})
			}
			continue
		}
		r := assetMapping.Extract(it)
		if r.String("ticker") == "" {
			continue
		}
		out = append(out, models.Asset{
			Ticker:   r.String("ticker"),
			Name:     r.String("name"),
			Exchange: r.String("exchange"),
			Country:  r.String("country"),
			Sector:   r.String("sector"),
		})
	}
	return out
}
