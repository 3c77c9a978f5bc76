// Package dataset loads bulk-import files and writes them through the
// tracker.
//
// A dataset is a YAML document with optional ingredients, starters,
// recipes and publish_notes lists. It is checked against an embedded CUE
// schema before anything is written, so a typo in a field name or an
// out-of-range amount rejects the whole file with the offending position.
//
//	ingredients:
//	  - ingredient_id: Yamada-60
//	    ingredient_type: kake_rice
//	recipes:
//	  - batch_id: B-12
//	    kake: Yamada-60
//	    final_measured_temp_c: 20
//	    final_measured_gravity: 0.998
//	    final_measured_brix: 8
package dataset
