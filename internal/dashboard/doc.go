// Package dashboard implements the Coordinator, the actor that drives the
// submission list poller and the selected-submission detail poller and folds
// their results into one consistent State.
//
// All state lives on the actor goroutine. Fetches run in short-lived
// goroutines and post results back tagged with the generation of the loop
// that issued them; results from a stopped loop are discarded on arrival.
package dashboard
