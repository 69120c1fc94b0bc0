// Package catalog loads furniture item definitions for the placement engine.
//
// Items are stored as a single JSON document:
//
//	{
//	  "items": [
//	    {"id": "sofa", "width": 2, "height": 1, "grid_requirements": ["floor"]},
//	    {"id": "rug", "width": 2, "height": 2, "grid_requirements": ["floor"],
//	     "provides_new_grid": true, "provided_grid_type": "decoration"}
//	  ]
//	}
//
// Documents are checked against a JSON Schema before decoding, then every
// definition is validated with engine.ItemDefinition.Validate. A Catalog
// implements engine.Catalog and is safe for concurrent use.
package catalog
