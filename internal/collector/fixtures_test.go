package collector

const dailyFixture = `{
  "Meta Data": {
    "1. Information": "Daily Prices (open, high, low, close) and Volumes",
    "2. Symbol": "NVDA",
    "3. Last Refreshed": "2024-01-03",
    "4. Output Size": "Compact",
    "5. Time Zone": "US/Eastern"
  },
  "Time Series (Daily)": {
    "2024-01-03": {"1. open": "102.0000", "2. high": "108.0000", "3. low": "101.0000", "4. close": "105.0000", "5. volume": "12000"},
    "2024-01-01": {"1. open": "100.0000", "2. high": "105.0000", "3. low": "99.0000", "4. close": "102.0000", "5. volume": "10000"},
    "2024-01-02": {"1. open": "102.0000", "2. high": "104.0000", "3. low": "100.5000", "4. close": "103.5000", "5. volume": "11000"}
  }
}`

const intradayFixture = `{
  "Meta Data": {
    "1. Information": "Intraday (15min) open, high, low, close prices and volume",
    "2. Symbol": "NVDA",
    "3. Last Refreshed": "2024-01-02 16:00:00",
    "4. Interval": "15min",
    "5. Output Size": "Compact",
    "6. Time Zone": "US/Eastern"
  },
  "Time Series (15min)": {
    "2024-01-02 16:00:00": {"1. open": "481.10", "2. high": "481.90", "3. low": "480.70", "4. close": "481.68", "5. volume": "90210"},
    "2024-01-02 15:30:00": {"1. open": "480.00", "2. high": "481.00", "3. low": "479.50", "4. close": "480.20", "5. volume": "70110"},
    "2024-01-02 15:45:00": {"1. open": "480.20", "2. high": "481.30", "3. low": "480.10", "4. close": "481.10", "5. volume": "80500"}
  }
}`

const weeklyFixture = `{
  "Meta Data": {
    "1. Information": "Weekly Prices (open, high, low, close) and Volumes",
    "2. Symbol": "NVDA",
    "3. Last Refreshed": "2024-01-12",
    "4. Time Zone": "US/Eastern"
  },
  "Weekly Time Series": {
    "2024-01-12": {"1. open": "495.1200", "2. high": "549.0000", "3. low": "490.0000", "4. close": "547.1000", "5. volume": "244000000"},
    "2024-01-05": {"1. open": "492.4400", "2. high": "495.2500", "3. low": "473.2000", "4. close": "490.9700", "5. volume": "201000000"}
  }
}`

const monthlyFixture = `{
  "Meta Data": {
    "1. Information": "Monthly Prices (open, high, low, close) and Volumes",
    "2. Symbol": "NVDA",
    "3. Last Refreshed": "2024-02-29",
    "4. Time Zone": "US/Eastern"
  },
  "Monthly Time Series": {
    "2024-02-29": {"1. open": "621.0000", "2. high": "823.9400", "3. low": "616.5000", "4. close": "791.1200", "5. volume": "1000000000"},
    "2023-12-29": {"1. open": "465.2500", "2. high": "504.3300", "3. low": "450.1000", "4. close": "495.2200", "5. volume": "900000000"},
    "2024-01-31": {"1. open": "492.4400", "2. high": "634.9300", "3. low": "473.2000", "4. close": "615.2700", "5. volume": "1100000000"}
  }
}`

const weeklyAdjustedFixture = `{
  "Meta Data": {
    "1. Information": "Weekly Adjusted Prices and Volumes",
    "2. Symbol": "NVDA",
    "3. Last Refreshed": "2024-01-12",
    "4. Time Zone": "US/Eastern"
  },
  "Weekly Adjusted Time Series": {
    "2024-01-12": {"1. open": "495.12", "2. high": "549.00", "3. low": "490.00", "4. close": "547.10", "5. adjusted close": "547.05", "6. volume": "244000000", "7. dividend amount": "0.0400"},
    "2024-01-05": {"1. open": "492.44", "2. high": "495.25", "3. low": "473.20", "4. close": "490.97", "5. adjusted close": "490.93", "6. volume": "201000000", "7. dividend amount": "0.0000"}
  }
}`

const quoteFixture = `{
  "Global Quote": {
    "01. symbol": "NVDA",
    "02. open": "100.0000",
    "03. high": "105.0000",
    "04. low": "99.0000",
    "05. price": "102.0000",
    "06. volume": "10000",
    "07. latest trading day": "2024-01-02",
    "08. previous close": "101.0000",
    "09. change": "1.0000",
    "10. change percent": "0.9901%"
  }
}`

const rateLimitFixture = `{
  "Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."
}`

const badSymbolFixture = `{
  "Error Message": "Invalid API call. Please retry or visit the documentation for TIME_SERIES_DAILY."
}`

const emptyQuoteFixture = `{"Global Quote": {}}`

const nonNumericFixture = `{
  "Time Series (Daily)": {
    "2024-01-01": {"1. open": "n/a", "2. high": "105.0", "3. low": "99.0", "4. close": "102.0", "5. volume": "10000"}
  }
}`

var fixturesByFunction = map[string]string{
	"GLOBAL_QUOTE":                quoteFixture,
	"TIME_SERIES_DAILY":           dailyFixture,
	"TIME_SERIES_INTRADAY":        intradayFixture,
	"TIME_SERIES_WEEKLY":          weeklyFixture,
	"TIME_SERIES_MONTHLY":         monthlyFixture,
	"TIME_SERIES_WEEKLY_ADJUSTED": weeklyAdjustedFixture,
}
