// Package repositories implements SQLite persistence for the shelf.
//
// Key Implementations:
//   - [ItemRepository] : one row per album, artist or mix in the items table
//
// Rows are hard deleted. The manual order lives in the nullable item_order column and is written as a single batch
// per reorder commit through [ItemRepository.SaveOrder].
package repositories
