/*
Package runlog keeps a small SQLite log of generation runs: which corpus was
read, how large the resulting graph grew, and which configuration and seed
produced the output. A recorded seed together with the same corpus and the
recorded thresholds and go-back setting replays a run exactly.

Only run metadata is stored. The graph itself is never persisted.
*/
package runlog
