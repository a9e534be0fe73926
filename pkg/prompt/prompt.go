// Package prompt holds the ReAct prompt used by the tool-using agent.
//
// The template is split the way langchaingo's one-shot agent assembles it:
// prefix, format instructions and suffix are joined with blank lines and
// rendered as a Go template with tool_descriptions, tool_names, input and
// agent_scratchpad in scope.
package prompt

const Prefix = `Answer the following questions as best you can. You have access to the following tools:

{{.tool_descriptions}}`

const FormatInstructions = `Use the following format:

Question: the input question you must answer
Thought: you should always think about what to do
Action: the action to take, should be one of [{{.tool_names}}]
Action Input: the input to the action
Observation: the result of the action
... (this Thought/Action/Action Input/Observation can repeat N times)
Thought: I now know the final answer
Final Answer: the final answer to the original input question

IMPORTANT: If you can answer the question without using any tools, go directly to 'Final Answer' after your initial thought.`

const Suffix = `Begin!

Question: {{.input}}
Thought:{{.agent_scratchpad}}`
