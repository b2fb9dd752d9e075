package roadmap

// DefaultGraph returns the built-in full-stack web development roadmap.
// Each call returns a fresh copy that callers may mutate freely.
func DefaultGraph() Graph {
	nodes := []Node{
		concept("root", "Full-Stack Web Development", "Everything you need to build and ship **web applications** end to end.",
			StatusInProgress, CategoryFoundation, 0, 600, 0, "overview"),
		concept("frontend", "Frontend Development", "Build user interfaces that run in the browser.",
			StatusInProgress, CategoryCore, 2400, 300, 160, "browser", "ui"),
		concept("html-css", "HTML & CSS", "Document structure, semantics, layout with flexbox and grid.",
			StatusCompleted, CategoryFoundation, 600, 100, 320, "markup", "styling"),
		concept("javascript", "JavaScript", "Language fundamentals, the DOM, async programming and modules.",
			StatusInProgress, CategoryFoundation, 1200, 420, 320, "language"),
		concept("react", "React", "Component model, props, rendering and reconciliation.",
			StatusPending, CategoryCore, 900, 300, 480, "framework"),
		concept("typescript", "TypeScript", "Static types for JavaScript: generics, narrowing, declaration files.",
			StatusPending, CategoryAdvanced, 600, 560, 480, "language", "types"),
		concept("state-management", "State Management", "Lifting state, context, external stores and server caches.",
			StatusLocked, CategoryAdvanced, 480, 100, 640),
		concept("react-hooks", "React Hooks", "useState, useEffect, useMemo and writing custom hooks.",
			StatusPending, CategoryCore, 360, 360, 640, "hooks"),
		concept("react-patterns", "React Patterns", "Compound components, render props, controlled inputs.",
			StatusLocked, CategoryAdvanced, 480, 620, 640),
		concept("backend", "Backend Development", "Servers, persistence and APIs.",
			StatusPending, CategoryCore, 2400, 960, 160, "server"),
		concept("nodejs", "Node.js", "Event loop, streams, the module system and package management.",
			StatusPending, CategoryCore, 900, 820, 320, "runtime"),
		concept("databases", "Databases", "Relational modelling, SQL, indexes and transactions.",
			StatusPending, CategoryCore, 900, 1100, 320, "sql"),
		concept("api-design", "API Design", "REST resources, status codes, pagination and versioning.",
			StatusLocked, CategoryAdvanced, 600, 820, 480, "http"),
		concept("devops", "DevOps", "Shipping and operating software.",
			StatusLocked, CategoryAdvanced, 1200, 1400, 160, "ops"),
		concept("docker", "Docker", "Images, containers, volumes and compose files.",
			StatusLocked, CategoryPractice, 480, 1400, 320, "containers"),
		concept("capstone", "Capstone Project", "Design, build and deploy a complete application.",
			StatusLocked, CategoryProject, 3000, 960, 800, "project"),
	}

	nodes[2].Data.Resources = []Resource{
		{Title: "MDN: HTML basics", URL: "https://developer.mozilla.org/en-US/docs/Learn/HTML", Type: ResourceDocumentation},
		{Title: "Flexbox Froggy", URL: "https://flexboxfroggy.com", Type: ResourceExercise},
	}
	nodes[4].Data.Resources = []Resource{
		{Title: "react.dev: Learn React", URL: "https://react.dev/learn", Type: ResourceDocumentation},
	}

	edges := []Edge{
		prereq("root", "frontend"),
		prereq("root", "backend"),
		prereq("root", "devops"),
		prereq("frontend", "html-css"),
		prereq("frontend", "javascript"),
		prereq("javascript", "react"),
		prereq("javascript", "typescript"),
		prereq("react", "state-management"),
		prereq("react", "react-hooks"),
		prereq("react", "react-patterns"),
		prereq("backend", "nodejs"),
		prereq("backend", "databases"),
		prereq("nodejs", "api-design"),
		prereq("devops", "docker"),
		prereq("api-design", "capstone"),
		link("typescript", "nodejs", Related),
		link("react-patterns", "capstone", Optional),
		link("docker", "capstone", Optional),
	}

	return Graph{Nodes: nodes, Edges: edges}
}

func concept(id, label, desc string, status Status, cat Category, minutes int, x, y float64, tags ...string) Node {
	n := Node{
		ID:       id,
		Position: Position{X: x, Y: y},
		Data: NodeData{
			Label:       label,
			Description: desc,
			Status:      status,
			Category:    cat,
			Tags:        tags,
		},
	}
	if minutes > 0 {
		n.Data.Duration = &minutes
	}
	return n
}

func prereq(source, target string) Edge {
	return link(source, target, Prerequisite)
}

func link(source, target string, rel Relationship) Edge {
	return Edge{
		ID:     EdgeID(source, target),
		Source: source,
		Target: target,
		Data:   EdgeData{Relationship: rel},
	}
}
