// Package scenario holds the predefined workloads and runs them against either account model.
//
// Every scenario seeds its accounts with 1000.00 and either stresses deposits and withdrawals
// (race) or performs transfers only (hotspot, scalability). Transfer-only scenarios form a closed
// economy and must finish with zero drift.
package scenario
