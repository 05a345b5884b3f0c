// Package errors provides coded, actionable errors for the storagehub command
// and its configuration.
//
// Each code maps to a registered template with a category, a short message
// and a longer explanation:
//
//	err := errors.New("S101").
//	    WithDetail("No storagehub.yaml found in /etc/storagehub").
//	    WithSuggestion("Pass --config or set STORAGESYNC_CONFIG")
//
//	fmt.Println(err.Format())
//	// ERROR S101: Configuration file not found
//	//
//	//   No storagehub.yaml found in /etc/storagehub
//	//
//	//   Hint: Pass --config or set STORAGESYNC_CONFIG
package errors
