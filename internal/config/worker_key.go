package config

type WorkerKeyStruct struct {
	PersistResultsQueue         string
	PersistIntegrityEventsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistResultsQueue:         "persist_results_queue",
	PersistIntegrityEventsQueue: "persist_integrity_events_queue",
}
