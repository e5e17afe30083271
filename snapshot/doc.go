// Package snapshot persists the catalog's trees, shapes included, so a
// restart neither replays the whole entry WAL nor changes which books sit
// at the roots. A snapshot records the sequence it covers; WAL records at
// or below it are skipped on replay and may be truncated.
package snapshot
