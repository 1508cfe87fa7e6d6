// Package querygate embeds the querygate search engine in a Go program.
//
// The client talks to the content backend directly, and to the query
// manipulation backend when one is configured. Results come back typed
// according to the declared fields.
//
//	client, _ := querygate.New(ctx,
//	    querygate.WithContentServer("http://content:9000"),
//	    querygate.WithQMSServer("http://qms:16000"),
//	    querygate.WithQueryManipulation(true, "blacklist"),
//	    querygate.WithFields(querygate.FieldConfig{
//	        ID:    "category",
//	        Names: []string{"DOCUMENT/CATEGORY"},
//	    }),
//	)
//	docs, _ := client.Query(ctx, querygate.QueryRequest{
//	    Restrictions: querygate.Restrictions{Text: "cats"},
//	    AutoCorrect:  true,
//	})
//	for _, r := range docs.Results {
//	    fmt.Println(r.Reference, r.Fields["category"])
//	}
package querygate
