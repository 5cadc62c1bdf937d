package stakelist

/*

# Stake list primitives (in-place, fixed capacity)

This package keeps the list of staked tokens inside a single caller-owned
buffer that never grows and is never reallocated. It follows the same
"functional primitives" style as the index formats it is modelled on:

- explicit byte layouts with exported offset constants
- index arithmetic on byte slices
- no per-record allocation; searches compare raw bytes in place

## Layout

	+----------------------+  offset 0, HeaderBytes (5)
	| initialized:1        |
	| capacity:2  (LE)     |
	| count:2     (LE)     |
	+----------------------+  offset 5, slot 0
	| record 0   (104B)    |
	+----------------------+
	| ...                  |
	+----------------------+  offset 5 + (capacity-1)*104
	| record capacity-1    |
	+----------------------+

Each record is

	| owner_id | token_id | holder_id | stake_time |
	| 0     31 | 32    63 | 64     95 | 96     103 |

stake_time is a little-endian int64 (unix seconds).

Slots [0, count) are live and ordered by insertion (Retain keeps relative
order). Slots [count, capacity) hold whatever bytes were last written there
and are never interpreted.

## Uniqueness

The list does not enforce uniqueness of (owner_id, token_id). FindByKeys
returns the first live match in slot order. Retain removes every record the
predicate rejects, not just the first.

*/
