// Package messaging provides a broker-agnostic event publisher.
//
// The vault publishes lifecycle events (token registered, import completed)
// to whichever broker the deployment configures: NSQ, NATS, Kafka or Google
// Pub/Sub. The driver is selected by name through the factory.
package messaging
