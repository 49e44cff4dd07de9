// Package prefs stores a user-item preference relation in compressed form.
//
// A Container keeps the relation in two views, one row per user listing the
// preferred items and one row per item listing its users. Each row is an
// ascending list of ids compressed into a single block by a codec from package
// codec, chosen per view through Codecs.
//
// Building compresses rows in parallel:
//
//	c, err := prefs.FromPairs(ctx, numUsers, numItems, pairs, prefs.Codecs{
//	    User: codec.MustNew(format.CodecIntegratedEliasFano),
//	    Item: codec.MustNew(format.CodecRice),
//	}, prefs.WithWorkers(8))
//	if err != nil {
//	    return err
//	}
//
//	for item, weight := range c.UserEntries(42) {
//	    ...
//	}
//
// Rows are decoded on every access and never cached.
//
// A container can be exchanged as two tab-separated text files (LoadText,
// SaveText) or as a single binary snapshot (WriteTo, ReadSnapshot) that stores
// the compressed blocks verbatim.
package prefs
