// Package scripts contains the builtin game scripts. Sources live in
// assets/scripts/ and are copied here with their catalog registration by
// cmd/gen-scripts.
package scripts

import "claybridge/internal/module"

// Catalog holds every generated script class. Load it as builtin:gamescripts.
var Catalog = module.NewCatalog("gamescripts")
