// Package serialization provides the JSON model file format for minnet networks.
//
// A model file is a single pretty-printed JSON document:
//
//	{
//	  "header":          { format, format_version, minnet_version, created_at, run_id, metadata },
//	  "hyperparameters": { node counts, hidden layer specs, learning rate, activation, ... },
//	  "layers":          [ { kind, input_size, output_size, kernel_size, pool_size, stride, weights }, ... ],
//	  "checksum":        "<hex SHA-256 of the canonical layers payload>"
//	}
//
// Weights are arrays of rows; a hole is written as null. Floats use the
// shortest representation that round-trips, so a save/load cycle is bit-exact.
//
// Example usage:
//
//	model := &serialization.Model{Header: serialization.NewHeader(nil), ...}
//	if err := serialization.Write("model.json", model); err != nil {
//	    log.Fatal(err)
//	}
//
//	loaded, err := serialization.Read("model.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
package serialization
