// Package templates holds the server-rendered dashboard shell. Panels are
// filled in afterwards by Datastar over the /sse endpoints.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

const Title = "Shopee Sales Dashboard"

// Panel ids targeted by element patches.
const (
	DailyPanel    = "daily-content"
	ProductsPanel = "products-content"
	SummaryPanel  = "summary-content"
	StatePanel    = "state-content"
	ErrorBanner   = "dashboard-error"
)

var panels = []struct {
	id, heading string
}{
	{SummaryPanel, "RFM Summary"},
	{DailyPanel, "Daily Orders"},
	{ProductsPanel, "Best and Worst Products"},
	{StatePanel, "Customers by State"},
}

// Dashboard renders the full page.
func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, pageHead); err != nil {
			return err
		}
		for _, p := range panels {
			if err := panel(p.id, p.heading).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, pageFoot)
		return err
	})
}

func panel(id, heading string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<section class="panel"><h2>`+
			templ.EscapeString(heading)+`</h2><div id="`+
			templ.EscapeString(id)+`">Loading...</div></section>`)
		return err
	})
}

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>` + Title + `</title>
<script type="module" src="` + datastarScript + `"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; background: #f7f7f9; }
.panel { background: #fff; border-radius: 8px; padding: 1rem; margin-bottom: 1rem; }
.metrics { display: flex; gap: 1.5rem; flex-wrap: wrap; }
.metric span { display: block; color: #666; font-size: .85rem; }
.error-banner, .metric-error { color: #b00020; }
.modern-table { border-collapse: collapse; width: 100%; }
.modern-table td, .modern-table th { padding: .3rem .6rem; border-bottom: 1px solid #eee; text-align: left; }
.is-max { font-weight: bold; background: #fff4e5; }
</style>
</head>
<body data-signals="{start: '', end: '', dailyOrders: [], bestProducts: [], worstProducts: [], genderData: [], ageData: [], stateData: [], topCustomers: {}}"
      data-init="@get('/sse/refresh-all')">
<header>
<h1>` + Title + `</h1>
<p>Orders, products, demographics and RFM for the selected period</p>
<form data-on:submit__prevent="@get('/sse/refresh-all')">
<label>From <input type="date" data-bind:start></label>
<label>To <input type="date" data-bind:end></label>
<button type="submit">Apply</button>
</form>
<div id="` + ErrorBanner + `"></div>
</header>
<main>
`

const pageFoot = `</main>
</body>
</html>
`
