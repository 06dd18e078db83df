package runner

import (
	"github.com/emicklei/dot"
)

// Graph returns the run flow, from the device fetch to the per device outcome.
func Graph() *dot.Graph {
	g := dot.NewGraph(dot.Directed)

	fetch := g.Node("Fetch")
	filter := g.Node("Filter")
	dispatch := g.Node("Dispatch")
	report := g.Node("Report")
	failed := g.Node("Failed")
	succeeded := g.Node("Succeeded")
	aborted := g.Node("Aborted")

	g.Edge(fetch, aborted, "Device list error")
	g.Edge(fetch, filter, "Devices fetched, next page followed")
	g.Edge(filter, report, "No device with tag")
	g.Edge(filter, dispatch, "Devices with tag")
	g.Edge(dispatch, succeeded, "Status 200")
	g.Edge(dispatch, failed, "Non 200 status or request error")
	g.Edge(dispatch, failed, "Run canceled")
	g.Edge(succeeded, dispatch, "Next device")
	g.Edge(failed, dispatch, "Next device")
	g.Edge(succeeded, report, "Last device")
	g.Edge(failed, report, "Last device")

	return g
}
