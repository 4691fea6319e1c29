// Package sizing implementa o motor de dimensionamento de mão de obra.
//
// Distribute reparte um total inteiro de pontos entre frentes de trabalho pelo
// método dos maiores restos, sem perda por arredondamento. Compute deriva, a partir
// das atividades e dos parâmetros do projeto, o esforço por frente, os totais
// agregados, a produtividade e a duração estimada.
//
// As duas funções são puras: não alteram os argumentos, não fazem I/O e nunca
// falham. Entradas degeneradas (sem atividades, pesos zerados, zero pontos)
// produzem resultados zerados.
package sizing
