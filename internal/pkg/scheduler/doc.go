// Package scheduler keeps many independent rotating one-time codes current on
// one shared clock.
//
// Every registered token gets a cache entry holding its last computed code and
// the seconds remaining until rotation. One ticker drives all entries; codes
// are recomputed only across period boundaries, so steady-state cost is
// proportional to boundary crossings rather than the tick rate.
package scheduler
