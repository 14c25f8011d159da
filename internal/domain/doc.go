// Package domain models resilience hubs: the emergency cooling, heating and
// charging sites a city opens during heat waves, freezes and power outages.
//
// # Hub Records
//
// A hub carries its coordinates in WGS-84 decimal degrees, an operating
// status, a verification timestamp and the set of services currently active.
// Status values:
//
//	open          accepting visitors, all listed services available
//	open_limited  accepting visitors, some services down
//	planned_open  scheduled to open (e.g. "Opens at 12:00 PM")
//	at_capacity   open but not admitting more visitors
//	closed        not operating
//
// Service vocabulary is fixed: cooling_room, heating_room, device_charging,
// wifi, potable_water, restrooms, medical_assistance, pet_relief,
// food_distribution. Values outside it are rejected on ingest.
//
// # Distance
//
// Distances are great-circle miles computed with the haversine formula on a
// sphere of radius 3959 mi. A hub's Distance field is nil unless the query
// that produced it carried a user location.
//
// # Ranking
//
// The canonical presentation order is status priority first:
//
//	open(0) < open_limited(1) < planned_open(2) < at_capacity(3) < closed(4)
//
// then ascending distance when both hubs have one, then name. The sort is
// stable. See [SortHubs].
//
// # Status Feed
//
// Site operators publish [StatusUpdate] messages as JSON keyed by hub id. The
// ingestion pipeline decodes them with [ParseStatusUpdate] and applies them to
// the in-memory store.
package domain
