// Command agentlance runs the AgentLance marketplace: a roster of AI
// provider agents, a job router, and the event mesh connecting them.
package main

func main() {
	Execute()
}
