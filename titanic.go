// Package titanic is an exploratory dashboard over the Kaggle Titanic
// passenger manifest.
//
// Usage:
//
//	cache := dataset.NewCache(os.DirFS("data"), dataset.DefaultFiles())
//	train, err := cache.Load(ctx, dataset.Train)
//	table := features.Augment(train)
//	survivors := filter.Apply(table, filter.Criteria{
//	    Sex:      []string{"female"},
//	    Pclass:   []string{"1", "2", "3"},
//	    AgeGroup: features.AgeLabels(),
//	    Survived: []string{"1"},
//	})
//
// The loader memoizes each CSV resource in an explicit Cache. Derived
// columns (age group, fare group, sex category) are computed on a copy and
// never written back into the cached table. Views in the views package are
// a closed set of variants rendered by the server, cli and tui front ends.
package titanic
