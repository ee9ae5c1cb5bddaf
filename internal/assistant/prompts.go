package assistant

// QuestionPromptTemplate frames a user question for the external model.
// The %s verb receives the question text.
const QuestionPromptTemplate = `You are an expert on Indian tax laws, specifically the new tax regime.
Please answer the following question about Indian taxation:

%s

Provide a concise, accurate response based on the latest Indian tax laws under the new regime.
Include relevant section numbers and citations where appropriate.
`
