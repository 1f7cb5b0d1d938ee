// Package crawler fills the stash with memorial pages.
//
// # Components
//
//   - LinkExtractor: pulls memorial links out of cemetery listing pages and
//     out of the family sections of burial pages.
//   - Digger: walks the cemetery units of an instruction file. For each
//     cemetery it validates the landing page, then runs the requested
//     groups in order. The burial group pages through the cemetery's
//     memorial search; every other group follows one family hop from each
//     burial page.
//
// # Politeness
//
// Requests are strictly sequential. Random pauses separate listing pages,
// stored pages and groups, on top of the fetcher's own rate ceiling. The
// pause source is a fetch.Pacer so tests run without sleeping.
//
// # Deduplication
//
// Before a family page is fetched its URL is checked against the running
// master list, which starts as the union of every list file in the stash
// and grows as pages are stored. A memorial therefore lands in the stash
// once, under the first group and burial that led to it.
//
// # Usage
//
//	d := crawler.NewDigger(fetcher, st, schema, crawler.OptionsFromConfig(cfg))
//	summary, err := d.Dig(ctx, instructions.Units)
package crawler
