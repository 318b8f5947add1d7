package marketdata

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestNormalizeMarketItemScenario(t *testing.T) {
	payload := `[{
		"pair": {"primary": "Xbt", "secondary": "Aud"},
		"price": {
			"last": "153263.48",
			"change": {"direction": "Down", "percent": "3.87", "amount": "6182.77"}
		},
		"volume": {"primary": "31.21", "secondary": "4848923.39"},
		"priceHistory": ["156149.98", "150000"]
	}]`

	items, err := ParseMarket([]byte(payload))
	require.NoError(t, err)
	require.Len(t, items, 1)

	got := items[0]
	assert.Equal(t, "XBT-AUD", got.Pair)
	assert.Equal(t, "XBT", got.Base)
	assert.Equal(t, "AUD", got.Quote)
	assert.Equal(t, ptr(153263.48), got.PriceLast)
	assert.Nil(t, got.Bid)
	assert.Nil(t, got.Ask)
	assert.Equal(t, ptr(-3.87), got.ChangePct)
	assert.Equal(t, ptr(-6182.77), got.ChangeAmt)
	assert.Equal(t, ChangeDown, got.ChangeDir)
	assert.Equal(t, ptr(31.21), got.VolBase)
	assert.Equal(t, ptr(4848923.39), got.VolQuote)
	assert.Equal(t, []float64{156149.98, 150000}, got.History)
	assert.Equal(t, ptr(150000.0), got.Low24h)
	assert.Equal(t, ptr(156149.98), got.High24h)
}

func TestNormalizeMarketItemNullSentinels(t *testing.T) {
	raw := MarketRaw{
		Pair: &MarketPairRaw{Primary: ptr("eth"), Secondary: ptr("usd")},
		Price: &MarketPriceRaw{
			Last:      ptr(NewNumberish(ParseNumberish("n/a"))),
			BestBid:   ptr(NewNumberish(ParseNumberish(""))),
			BestOffer: ptr(NewNumberish(math.Inf(1))),
		},
		PriceHistory: []Numberish{
			NewNumberish(ParseNumberish("abc")),
			NewNumberish(10),
			NewNumberish(math.NaN()),
			NewNumberish(7),
		},
	}

	got := NormalizeMarketItem(raw)
	assert.Nil(t, got.PriceLast)
	assert.Nil(t, got.Bid)
	assert.Nil(t, got.Ask)
	assert.Nil(t, got.ChangePct)
	assert.Nil(t, got.ChangeAmt)
	assert.Equal(t, ChangeNone, got.ChangeDir)
	assert.Nil(t, got.VolBase)
	assert.Nil(t, got.VolQuote)
	assert.Equal(t, []float64{10, 7}, got.History)
	assert.Equal(t, ptr(7.0), got.Low24h)
	assert.Equal(t, ptr(10.0), got.High24h)
}

func TestNormalizeMarketItemEmptyHistory(t *testing.T) {
	got := NormalizeMarketItem(MarketRaw{
		Pair:  &MarketPairRaw{Primary: ptr("a"), Secondary: ptr("b")},
		Price: &MarketPriceRaw{},
	})
	assert.NotNil(t, got.History)
	assert.Empty(t, got.History)
	assert.Nil(t, got.Low24h)
	assert.Nil(t, got.High24h)
}

func TestNormalizeMarketItemChangeSign(t *testing.T) {
	cases := []struct {
		name      string
		direction *Direction
		wantDir   ChangeDir
		wantSign  float64
	}{
		{"up", ptr(DirectionUp), ChangeUp, 1},
		{"down", ptr(DirectionDown), ChangeDown, -1},
		{"missing direction defaults up", nil, ChangeUp, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, magnitude := range []float64{0, 1.5, -2.25} {
				got := NormalizeMarketItem(MarketRaw{
					Pair: &MarketPairRaw{Primary: ptr("a"), Secondary: ptr("b")},
					Price: &MarketPriceRaw{Change: &MarketChangeRaw{
						Direction: tc.direction,
						Percent:   ptr(NewNumberish(magnitude)),
						Amount:    ptr(NewNumberish(magnitude * 10)),
					}},
				})
				assert.Equal(t, tc.wantDir, got.ChangeDir)
				require.NotNil(t, got.ChangePct)
				require.NotNil(t, got.ChangeAmt)
				assert.GreaterOrEqual(t, *got.ChangePct*tc.wantSign, 0.0)
				assert.GreaterOrEqual(t, *got.ChangeAmt*tc.wantSign, 0.0)
				assert.False(t, math.Signbit(*got.ChangePct) && *got.ChangePct == 0, "negative zero")
			}
		})
	}
}

func TestNormalizeMarketItemPairIsBaseQuote(t *testing.T) {
	pairs := [][2]string{{"Xbt", "Aud"}, {"eth", "BTC"}, {"", "usd"}, {"Sol", "usdc"}}
	for _, p := range pairs {
		got := NormalizeMarketItem(MarketRaw{
			Pair:  &MarketPairRaw{Primary: ptr(p[0]), Secondary: ptr(p[1])},
			Price: &MarketPriceRaw{},
		})
		assert.Equal(t, got.Base+"-"+got.Quote, got.Pair)
		assert.Equal(t, strings.ToUpper(got.Base), got.Base)
		assert.Equal(t, strings.ToUpper(got.Quote), got.Quote)
	}
}

func TestNormalizeCurrencyMeta(t *testing.T) {
	cases := []struct {
		name string
		raw  CurrencyMetaRaw
		want CurrencyMeta
	}{
		{
			name: "code wins",
			raw: CurrencyMetaRaw{
				Code: ptr("Aud"), Ticker: ptr("aud"), Type: ptr("fiat"),
				DecimalsPlaces: ptr(2.0), SortOrder: ptr(3.0), Icon: ptr("PHN2Zz4="),
			},
			want: CurrencyMeta{
				Code: "AUD", Ticker: "AUD", Type: "fiat",
				Decimals: ptr(2), SortOrder: ptr(3.0),
				IconDataURL: "data:image/svg+xml;base64,PHN2Zz4=",
			},
		},
		{
			name: "falls back to ticker",
			raw:  CurrencyMetaRaw{Code: ptr(""), Ticker: ptr("xbt")},
			want: CurrencyMeta{Code: "XBT", Ticker: "XBT"},
		},
		{
			name: "placeholder",
			raw:  CurrencyMetaRaw{Code: ptr("")},
			want: CurrencyMeta{Code: PlaceholderCode},
		},
		{
			name: "empty icon is absent",
			raw:  CurrencyMetaRaw{Code: ptr("eth"), Icon: ptr("")},
			want: CurrencyMeta{Code: "ETH"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeCurrencyMeta(tc.raw)
			assert.Equal(t, tc.want, got)
			assert.NotEmpty(t, got.Code)
			assert.Equal(t, strings.ToUpper(got.Code), got.Code)
		})
	}
}

func TestParseNumberish(t *testing.T) {
	assert.Equal(t, 153263.48, ParseNumberish("153263.48"))
	assert.Equal(t, 150000.0, ParseNumberish(" 150000 "))
	assert.Equal(t, -0.5, ParseNumberish("-0.5"))
	assert.Equal(t, 1e3, ParseNumberish("1e3"))
	for _, bad := range []string{"", "   ", "abc", "1,000", "NaN", "Infinity", "1e400"} {
		assert.True(t, math.IsNaN(ParseNumberish(bad)), "ParseNumberish(%q)", bad)
	}
}

func TestNumberishUnmarshal(t *testing.T) {
	var values []Numberish
	require.NoError(t, json.Unmarshal([]byte(`[1.5, "2.5", "x", null]`), &values))
	require.Len(t, values, 4)
	assert.Equal(t, 1.5, values[0].Float())
	assert.Equal(t, 2.5, values[1].Float())
	assert.True(t, math.IsNaN(values[2].Float()))
	assert.True(t, math.IsNaN(values[3].Float()))

	var n Numberish
	assert.Error(t, json.Unmarshal([]byte(`true`), &n))
	assert.Error(t, json.Unmarshal([]byte(`{"v":1}`), &n))
}

func TestMarketItemJSONShape(t *testing.T) {
	item := NormalizeMarketItem(MarketRaw{
		Pair:  &MarketPairRaw{Primary: ptr("xbt"), Secondary: ptr("aud")},
		Price: &MarketPriceRaw{Last: ptr(NewNumberish(1))},
	})
	data, err := json.Marshal(item)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"pair":"XBT-AUD","base":"XBT","quote":"AUD",
		"priceLast":1,"bid":null,"ask":null,
		"changePct":null,"changeAmt":null,"changeDir":null,
		"volBase":null,"volQuote":null,
		"history":[],"low24h":null,"high24h":null
	}`, string(data))
}
