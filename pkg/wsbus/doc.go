// Package wsbus carries storage events between processes over WebSocket.
//
// A Hub is an HTTP service that accepts WebSocket connections and relays every
// event frame it receives to all other connections. A Client connects to a
// hub and implements storage.Bus, so windows in different processes that
// share a durable local area (such as storage.S3Storage) see each other's
// writes:
//
//	hub := wsbus.NewHub(wsbus.DefaultHubConfig())
//	go http.ListenAndServe(":7070", hub)
//
//	client, err := wsbus.Dial(ctx, "ws://localhost:7070/ws")
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	win := storage.NewWindow(sharedStore, client)
//
// Frames are JSON text messages:
//
//	{"type":"hello","context":"<client id>"}
//	{"type":"event","context":"<client id>","event":{"key":"theme","newValue":"\"dark\"",...}}
//
// The hello frame must be the first message on a connection.
package wsbus
