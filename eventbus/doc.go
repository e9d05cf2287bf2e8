/*
Package eventbus provides the per-bounded-context dispatch registry for
domain events. Handlers register with a priority and run synchronously,
in deterministic order, in the dispatching caller's own goroutine; one
handler's failure or panic never prevents the others from running.
*/
package eventbus
