// Package control orchestrates device action dispatch: validate the
// action against the device's constraint rule, compute the resulting
// status, and commit the status write together with its activity log
// entry in a single transaction. Optional integrations (MQTT, InfluxDB,
// websocket streaming) hear about changes only after the commit.
package control
