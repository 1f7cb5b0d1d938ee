// Package fetch retrieves pages from the memorial site.
//
// A Fetcher is a thin layer over a resty client that always presents the
// same browser-like identity (User-Agent plus the consent cookie), retries
// failed requests a bounded number of times with a random pause between
// attempts, and never exceeds a fixed request rate. Exhausting the retry
// budget yields a *FetchError, which callers treat as fatal for the run.
//
// Pacing between pages is not the fetcher's job. The crawler asks a Pacer
// for a random pause after each page, which keeps the politeness policy in
// one place and lets tests substitute a pacer that never sleeps.
package fetch
